package services

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/logger"
	"github.com/SmartSplit/smart-split-backend/types"
)

// NotificationService writes bell notifications for settlement lifecycle
// events and serves the bell endpoints. It implements SettlementNotifier.
// Notification writes never fail the settlement flow: errors are logged and
// dropped.
type NotificationService struct {
	notifications store.NotificationStore
}

func NewNotificationService(notifications store.NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

var _ SettlementNotifier = (*NotificationService)(nil)

// SettlementRequested notifies the payee that a settlement awaits approval.
func (s *NotificationService) SettlementRequested(ctx context.Context, settlement *types.Settlement) {
	if settlement.PayeeUserID == nil {
		// Placeholder payees have no account to notify.
		return
	}
	s.create(ctx, *settlement.PayeeUserID, types.NotificationSettlementRequested,
		fmt.Sprintf("%s recorded a payment of %.2f awaiting your approval", settlement.PayerName, settlement.Amount),
		settlement)
}

// SettlementResolved notifies the requester of the payee's decision.
func (s *NotificationService) SettlementResolved(ctx context.Context, settlement *types.Settlement) {
	notificationType := types.NotificationSettlementApproved
	verb := "approved"
	if settlement.Status == types.SettlementStatusRejected {
		notificationType = types.NotificationSettlementRejected
		verb = "rejected"
	}
	s.create(ctx, settlement.RequestedBy, notificationType,
		fmt.Sprintf("%s %s your settlement of %.2f", settlement.PayeeName, verb, settlement.Amount),
		settlement)
}

func (s *NotificationService) create(ctx context.Context, userID string, notificationType types.NotificationType, message string, settlement *types.Settlement) {
	metadata, err := json.Marshal(map[string]string{
		"settlementId": settlement.ID,
		"groupId":      settlement.GroupID,
	})
	if err != nil {
		metadata = nil
	}

	_, err = s.notifications.CreateNotification(ctx, &types.Notification{
		UserID:   userID,
		Type:     notificationType,
		Message:  message,
		Metadata: metadata,
	})
	if err != nil {
		logger.GetLogger().Warnw("Failed to create notification",
			"userID", userID, "type", notificationType, "error", err)
	}
}

// List returns the user's recent notifications.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]types.Notification, error) {
	notifications, err := s.notifications.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return notifications, nil
}

// UnreadCount returns the badge count for the bell.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return apperrors.NotFound("Notification", id)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}
