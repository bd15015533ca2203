package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/logger"
	"github.com/SmartSplit/smart-split-backend/types"
)

// SettlementNotifier receives settlement lifecycle events for the bell.
// Implementations must not fail the settlement flow; delivery is best-effort.
type SettlementNotifier interface {
	SettlementRequested(ctx context.Context, settlement *types.Settlement)
	SettlementResolved(ctx context.Context, settlement *types.Settlement)
}

// SettlementService is the reconciliation engine: it records payments between
// members, decides whether the payee must approve, applies placeholder
// auto-approvals against outstanding splits, and serializes recordings per
// (group, payer, payee) tuple through a LockProvider.
//
// Membership of the recording user in the group is the caller's
// responsibility; the engine trusts that the check already passed.
type SettlementService struct {
	settlements store.SettlementStore
	expenses    store.ExpenseStore
	locks       LockProvider
	notifier    SettlementNotifier
	lockTTL     time.Duration
}

// RecordResult is the outcome of a successful recording. Pending reports
// whether the settlement now awaits the payee's approval.
type RecordResult struct {
	Settlement *types.Settlement `json:"settlement"`
	Pending    bool              `json:"pending"`
}

func NewSettlementService(
	settlements store.SettlementStore,
	expenses store.ExpenseStore,
	locks LockProvider,
	notifier SettlementNotifier,
	lockTTL time.Duration,
) *SettlementService {
	if lockTTL <= 0 {
		lockTTL = 15 * time.Second
	}
	return &SettlementService{
		settlements: settlements,
		expenses:    expenses,
		locks:       locks,
		notifier:    notifier,
		lockTTL:     lockTTL,
	}
}

// RecordSettlement records one payment from FromMemberID to ToMemberID.
//
// The whole read-decide-write sequence runs under an exclusive lock on the
// (group, payer, payee) tuple, which is what prevents two concurrent "Settle"
// clicks from both inserting a row. Recordings for different member pairs in
// the same group proceed concurrently; that is safe because balances are
// recomputed from the ledger on every read.
func (s *SettlementService) RecordSettlement(ctx context.Context, params types.RecordSettlementParams) (*RecordResult, error) {
	if err := validateRecordParams(&params); err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("settlement:%s:%s:%s", params.GroupID, params.FromMemberID, params.ToMemberID)
	release, err := s.locks.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			return nil, apperrors.SettlementBeingProcessed(params.GroupID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	defer release()

	// Approval is bypassed when no independent party is left to confirm:
	// a placeholder payee cannot respond, a recorder who IS the payee is
	// confirming receipt directly, and a placeholder payer is represented
	// by the recorder anyway.
	autoApprove := params.ToIsPlaceholder ||
		params.RecordedBy == params.ToMemberID ||
		params.FromIsPlaceholder

	settlement := buildSettlement(&params, autoApprove)

	id, err := s.settlements.CreateSettlement(ctx, settlement)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	settlement.ID = id

	if autoApprove && params.ToIsPlaceholder {
		// Placeholder payees cannot track what has been repaid, so the
		// recorded amount is not reconciled split-by-split: every
		// outstanding split from the payer on the placeholder's expenses
		// is cleared in bulk.
		cleared, err := s.expenses.MarkSplitsSettled(ctx,
			params.GroupID, params.FromMemberID, params.FromIsPlaceholder, params.ToMemberID)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		logger.GetLogger().Infow("Cleared outstanding splits for placeholder settlement",
			"groupID", params.GroupID, "settlementID", id, "splitsCleared", cleared)
	}

	if !autoApprove && s.notifier != nil {
		s.notifier.SettlementRequested(ctx, settlement)
	}

	return &RecordResult{Settlement: settlement, Pending: !autoApprove}, nil
}

// ListSettlements returns the group's full settlement history.
func (s *SettlementService) ListSettlements(ctx context.Context, groupID string) ([]types.Settlement, error) {
	settlements, err := s.settlements.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return settlements, nil
}

// ListPendingForPayee returns every settlement awaiting the user's approval,
// across all their groups.
func (s *SettlementService) ListPendingForPayee(ctx context.Context, payeeUserID string) ([]types.Settlement, error) {
	settlements, err := s.settlements.ListPendingForPayee(ctx, payeeUserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return settlements, nil
}

// ApproveSettlement moves a pending settlement to approved. Only the payee
// may approve, and a settlement that already reached a terminal state is
// reported as a failure, never silently re-approved.
func (s *SettlementService) ApproveSettlement(ctx context.Context, settlementID, approverID string) (*types.Settlement, error) {
	return s.resolveSettlement(ctx, settlementID, approverID, types.SettlementStatusApproved)
}

// RejectSettlement moves a pending settlement to rejected, under the same
// payee-only and terminal-immutability rules as approval.
func (s *SettlementService) RejectSettlement(ctx context.Context, settlementID, rejecterID string) (*types.Settlement, error) {
	return s.resolveSettlement(ctx, settlementID, rejecterID, types.SettlementStatusRejected)
}

func (s *SettlementService) resolveSettlement(ctx context.Context, settlementID, actorID string, to types.SettlementStatus) (*types.Settlement, error) {
	settlement, err := s.settlements.GetSettlement(ctx, settlementID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Settlement", settlementID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if settlement.IsTerminal() {
		return nil, apperrors.InvalidSettlementState(string(settlement.Status))
	}
	if settlement.PayeeUserID == nil || *settlement.PayeeUserID != actorID {
		return nil, apperrors.Forbidden("Only the payee can resolve a settlement",
			fmt.Sprintf("Settlement ID: %s", settlementID))
	}

	updated, err := s.settlements.TransitionStatus(ctx, settlementID, to)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost a race with another resolution; the row is terminal now.
			return nil, apperrors.InvalidSettlementState("resolved concurrently")
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if s.notifier != nil {
		s.notifier.SettlementResolved(ctx, updated)
	}

	return updated, nil
}

func validateRecordParams(params *types.RecordSettlementParams) error {
	if params.Amount <= 0 {
		return apperrors.ValidationFailed("Settlement amount must be positive",
			fmt.Sprintf("amount: %.2f", params.Amount))
	}
	if params.FromMemberID == params.ToMemberID {
		return apperrors.ValidationFailed("Payer and payee must differ", "")
	}
	if params.FromMemberID == "" || params.ToMemberID == "" {
		return apperrors.ValidationFailed("Payer and payee are required", "")
	}
	return nil
}

func buildSettlement(params *types.RecordSettlementParams, autoApprove bool) *types.Settlement {
	now := time.Now().UTC()
	settlement := &types.Settlement{
		GroupID:     params.GroupID,
		PayerName:   params.FromDisplayName,
		PayeeName:   params.ToDisplayName,
		Amount:      params.Amount,
		Status:      types.SettlementStatusPending,
		RequestedBy: params.RecordedBy,
		RequestedAt: now,
	}

	from := params.FromMemberID
	if params.FromIsPlaceholder {
		settlement.PayerPlaceholderID = &from
	} else {
		settlement.PayerUserID = &from
	}
	to := params.ToMemberID
	if params.ToIsPlaceholder {
		settlement.PayeePlaceholderID = &to
	} else {
		settlement.PayeeUserID = &to
	}

	if autoApprove {
		settlement.Status = types.SettlementStatusApproved
		settlement.SettledAt = &now
	}

	return settlement
}
