package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/jackc/pgx/v5"
)

// SettlementStore implements store.SettlementStore using PostgreSQL.
type SettlementStore struct {
	db DB
}

// NewSettlementStore creates a new SettlementStore instance.
func NewSettlementStore(db DB) *SettlementStore {
	return &SettlementStore{db: db}
}

const settlementColumns = `id, group_id, payer_user_id, payer_placeholder_id, payer_name,
		payee_user_id, payee_placeholder_id, payee_name, amount, status,
		requested_by, requested_at, settled_at, created_at, updated_at`

// CreateSettlement inserts a new settlement row and returns its ID.
func (s *SettlementStore) CreateSettlement(ctx context.Context, settlement *types.Settlement) (string, error) {
	query := `
		INSERT INTO settlements (
			group_id, payer_user_id, payer_placeholder_id, payer_name,
			payee_user_id, payee_placeholder_id, payee_name, amount, status,
			requested_by, requested_at, settled_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var id string
	err := s.db.QueryRow(ctx, query,
		settlement.GroupID,
		settlement.PayerUserID,
		settlement.PayerPlaceholderID,
		settlement.PayerName,
		settlement.PayeeUserID,
		settlement.PayeePlaceholderID,
		settlement.PayeeName,
		settlement.Amount,
		settlement.Status,
		settlement.RequestedBy,
		settlement.RequestedAt,
		settlement.SettledAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating settlement: %w", err)
	}

	return id, nil
}

// GetSettlement retrieves a settlement by its ID.
func (s *SettlementStore) GetSettlement(ctx context.Context, id string) (*types.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE id = $1`

	settlement, err := scanSettlement(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("getting settlement %s: %w", id, err)
	}

	return settlement, nil
}

// ListSettlements retrieves all settlements for a group, newest first.
func (s *SettlementStore) ListSettlements(ctx context.Context, groupID string) ([]types.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
		FROM settlements
		WHERE group_id = $1
		ORDER BY requested_at DESC`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing settlements for group %s: %w", groupID, err)
	}
	defer rows.Close()

	return collectSettlements(rows)
}

// ListPendingForPayee retrieves settlements awaiting the given user's approval.
func (s *SettlementStore) ListPendingForPayee(ctx context.Context, payeeUserID string) ([]types.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
		FROM settlements
		WHERE payee_user_id = $1 AND status = $2
		ORDER BY requested_at DESC`

	rows, err := s.db.Query(ctx, query, payeeUserID, types.SettlementStatusPending)
	if err != nil {
		return nil, fmt.Errorf("listing pending settlements for payee %s: %w", payeeUserID, err)
	}
	defer rows.Close()

	return collectSettlements(rows)
}

// TransitionStatus moves a pending settlement to a terminal state. The WHERE
// clause only matches pending rows, so an already-terminal settlement comes
// back as ErrNotFound and is never rewritten.
func (s *SettlementStore) TransitionStatus(ctx context.Context, id string, to types.SettlementStatus) (*types.Settlement, error) {
	var settledAt *time.Time
	if to == types.SettlementStatusApproved {
		now := time.Now().UTC()
		settledAt = &now
	}

	query := `
		UPDATE settlements
		SET status = $1, settled_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + settlementColumns

	settlement, err := scanSettlement(s.db.QueryRow(ctx, query, to, settledAt, id, types.SettlementStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("transitioning settlement %s to %s: %w", id, to, err)
	}

	return settlement, nil
}

func scanSettlement(row pgx.Row) (*types.Settlement, error) {
	settlement := &types.Settlement{}
	err := row.Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerUserID,
		&settlement.PayerPlaceholderID,
		&settlement.PayerName,
		&settlement.PayeeUserID,
		&settlement.PayeePlaceholderID,
		&settlement.PayeeName,
		&settlement.Amount,
		&settlement.Status,
		&settlement.RequestedBy,
		&settlement.RequestedAt,
		&settlement.SettledAt,
		&settlement.CreatedAt,
		&settlement.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

func collectSettlements(rows pgx.Rows) ([]types.Settlement, error) {
	var settlements []types.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settlements, nil
}
