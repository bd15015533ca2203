package types

import (
	"encoding/json"
	"time"
)

// NotificationType enumerates the events that feed the in-app bell.
type NotificationType string

const (
	NotificationSettlementRequested NotificationType = "SETTLEMENT_REQUESTED"
	NotificationSettlementApproved  NotificationType = "SETTLEMENT_APPROVED"
	NotificationSettlementRejected  NotificationType = "SETTLEMENT_REJECTED"
)

// Notification is a DB-backed bell item for one user. Delivery transport
// (push, email) is outside this service; clients poll and mark read.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Metadata  json.RawMessage  `json:"metadata,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
