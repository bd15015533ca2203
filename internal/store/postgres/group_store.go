package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/jackc/pgx/v5"
)

// GroupStore implements store.GroupStore using PostgreSQL.
type GroupStore struct {
	db DB
}

// NewGroupStore creates a new GroupStore instance.
func NewGroupStore(db DB) *GroupStore {
	return &GroupStore{db: db}
}

// CreateGroup inserts the group and its creator's membership in one
// transaction.
func (s *GroupStore) CreateGroup(ctx context.Context, group *types.Group, creatorName string) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("beginning group transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO groups (name, description, currency, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id string
	err = tx.QueryRow(ctx, query,
		group.Name,
		group.Description,
		group.Currency,
		group.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating group: %w", err)
	}

	memberQuery := `
		INSERT INTO group_members (group_id, user_id, display_name, is_placeholder)
		VALUES ($1, $2, $3, FALSE)`

	if _, err := tx.Exec(ctx, memberQuery, id, group.CreatedBy, creatorName); err != nil {
		return "", fmt.Errorf("adding group creator membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("committing group: %w", err)
	}

	return id, nil
}

// GetGroup retrieves a group by its ID.
func (s *GroupStore) GetGroup(ctx context.Context, id string) (*types.Group, error) {
	query := `
		SELECT id, name, description, currency, created_by, created_at, updated_at
		FROM groups
		WHERE id = $1`

	group := &types.Group{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.Currency,
		&group.CreatedBy,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("getting group %s: %w", id, err)
	}

	return group, nil
}

// ListGroupsForUser retrieves all groups the user belongs to.
func (s *GroupStore) ListGroupsForUser(ctx context.Context, userID string) ([]types.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.currency, g.created_by, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1 AND m.is_placeholder = FALSE
		ORDER BY g.created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing groups for user %s: %w", userID, err)
	}
	defer rows.Close()

	var groups []types.Group
	for rows.Next() {
		var group types.Group
		err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.Currency,
			&group.CreatedBy,
			&group.CreatedAt,
			&group.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groups, nil
}

// AddMember inserts a membership row (registered user or placeholder).
func (s *GroupStore) AddMember(ctx context.Context, member *types.GroupMember) (string, error) {
	query := `
		INSERT INTO group_members (group_id, user_id, display_name, is_placeholder)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id string
	err := s.db.QueryRow(ctx, query,
		member.GroupID,
		member.UserID,
		member.DisplayName,
		member.IsPlaceholder,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("adding group member: %w", err)
	}

	return id, nil
}

// ListMembers retrieves all members of a group, placeholders included.
func (s *GroupStore) ListMembers(ctx context.Context, groupID string) ([]types.GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, display_name, is_placeholder, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing members for group %s: %w", groupID, err)
	}
	defer rows.Close()

	var members []types.GroupMember
	for rows.Next() {
		var member types.GroupMember
		err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.DisplayName,
			&member.IsPlaceholder,
			&member.JoinedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

// IsMember reports whether the user is a registered (non-placeholder) member
// of the group.
func (s *GroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM group_members
			WHERE group_id = $1 AND user_id = $2 AND is_placeholder = FALSE
		)`

	var exists bool
	if err := s.db.QueryRow(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}

	return exists, nil
}
