// Package store defines the data-access interfaces consumed by the service
// layer. Implementations live in internal/store/postgres.
package store

import (
	"context"

	"github.com/SmartSplit/smart-split-backend/types"
)

// GroupStore handles group and membership data operations.
type GroupStore interface {
	// CreateGroup inserts the group and the creator's membership row in one
	// transaction; creatorName becomes the creator's display name.
	CreateGroup(ctx context.Context, group *types.Group, creatorName string) (string, error)
	GetGroup(ctx context.Context, id string) (*types.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]types.Group, error)
	AddMember(ctx context.Context, member *types.GroupMember) (string, error)
	ListMembers(ctx context.Context, groupID string) ([]types.GroupMember, error)
	// IsMember reports whether the user is a registered member of the group.
	// This is the authorization check callers run before touching settlement
	// or expense state.
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// ExpenseStore handles expense and split data operations.
type ExpenseStore interface {
	// CreateExpense inserts the expense and its splits in one transaction.
	CreateExpense(ctx context.Context, expense *types.Expense) (string, error)
	GetExpense(ctx context.Context, id string) (*types.Expense, error)
	// ListExpenses returns the group's expenses with their splits attached.
	ListExpenses(ctx context.Context, groupID string) ([]types.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	// MarkSplitsSettled bulk-marks every outstanding split owed by the payer
	// member on expenses paid by the given placeholder payee. Returns the
	// number of splits updated.
	MarkSplitsSettled(ctx context.Context, groupID, payerMemberID string, payerIsPlaceholder bool, payeePlaceholderID string) (int64, error)
}

// SettlementStore handles settlement ledger operations.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *types.Settlement) (string, error)
	GetSettlement(ctx context.Context, id string) (*types.Settlement, error)
	ListSettlements(ctx context.Context, groupID string) ([]types.Settlement, error)
	ListPendingForPayee(ctx context.Context, payeeUserID string) ([]types.Settlement, error)
	// TransitionStatus moves a settlement out of pending. It only matches rows
	// still in pending state and returns ErrNotFound when the row is missing
	// or already terminal, which is how terminal-state immutability is
	// enforced at the data layer.
	TransitionStatus(ctx context.Context, id string, to types.SettlementStatus) (*types.Settlement, error)
}

// NotificationStore handles bell notification rows.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *types.Notification) (string, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]types.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
}
