package postgres

import (
	"context"
	"fmt"

	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
)

// NotificationStore implements store.NotificationStore using PostgreSQL.
type NotificationStore struct {
	db DB
}

// NewNotificationStore creates a new NotificationStore instance.
func NewNotificationStore(db DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// CreateNotification inserts a bell notification row and returns its ID.
func (s *NotificationStore) CreateNotification(ctx context.Context, n *types.Notification) (string, error) {
	query := `
		INSERT INTO notifications (user_id, type, message, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id string
	err := s.db.QueryRow(ctx, query, n.UserID, n.Type, n.Message, n.Metadata).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating notification: %w", err)
	}

	return id, nil
}

// ListNotifications retrieves the user's notifications, newest first.
func (s *NotificationStore) ListNotifications(ctx context.Context, userID string, limit int) ([]types.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, type, message, metadata, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for user %s: %w", userID, err)
	}
	defer rows.Close()

	var notifications []types.Notification
	for rows.Next() {
		var n types.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Metadata, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`

	var count int
	if err := s.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationStore) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`

	tag, err := s.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}
