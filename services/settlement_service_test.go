package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSettlementStore keeps settlements in memory and mirrors the postgres
// store's pending-only transition guard.
type stubSettlementStore struct {
	mu          sync.Mutex
	settlements map[string]*types.Settlement
	nextID      int
	createErr   error
	// createEntered is closed on the first CreateSettlement call, createHold
	// blocks it until closed. Both optional; used to stage races.
	createEntered chan struct{}
	createHold    chan struct{}
	enteredOnce   sync.Once
}

func newStubSettlementStore() *stubSettlementStore {
	return &stubSettlementStore{settlements: make(map[string]*types.Settlement)}
}

func (s *stubSettlementStore) CreateSettlement(ctx context.Context, settlement *types.Settlement) (string, error) {
	if s.createEntered != nil {
		s.enteredOnce.Do(func() { close(s.createEntered) })
	}
	if s.createHold != nil {
		<-s.createHold
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.nextID++
	id := fmt.Sprintf("stl-%d", s.nextID)
	saved := *settlement
	saved.ID = id
	s.settlements[id] = &saved
	return id, nil
}

func (s *stubSettlementStore) GetSettlement(ctx context.Context, id string) (*types.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stl, ok := s.settlements[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *stl
	return &copied, nil
}

func (s *stubSettlementStore) ListSettlements(ctx context.Context, groupID string) ([]types.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Settlement
	for _, stl := range s.settlements {
		if stl.GroupID == groupID {
			out = append(out, *stl)
		}
	}
	return out, nil
}

func (s *stubSettlementStore) ListPendingForPayee(ctx context.Context, payeeUserID string) ([]types.Settlement, error) {
	return nil, nil
}

func (s *stubSettlementStore) TransitionStatus(ctx context.Context, id string, to types.SettlementStatus) (*types.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stl, ok := s.settlements[id]
	if !ok || stl.Status != types.SettlementStatusPending {
		return nil, store.ErrNotFound
	}
	stl.Status = to
	if to == types.SettlementStatusApproved {
		now := time.Now().UTC()
		stl.SettledAt = &now
	}
	copied := *stl
	return &copied, nil
}

// stubExpenseStore records MarkSplitsSettled invocations and serves a fixed
// expense list.
type stubExpenseStore struct {
	mu             sync.Mutex
	expenses       []types.Expense
	markCalls      []markCall
	markErr        error
	splitsReturned int64
}

type markCall struct {
	groupID            string
	payerMemberID      string
	payerIsPlaceholder bool
	payeePlaceholderID string
}

func (s *stubExpenseStore) CreateExpense(ctx context.Context, expense *types.Expense) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubExpenseStore) GetExpense(ctx context.Context, id string) (*types.Expense, error) {
	return nil, store.ErrNotFound
}

func (s *stubExpenseStore) ListExpenses(ctx context.Context, groupID string) ([]types.Expense, error) {
	return s.expenses, nil
}

func (s *stubExpenseStore) DeleteExpense(ctx context.Context, id string) error {
	return nil
}

func (s *stubExpenseStore) MarkSplitsSettled(ctx context.Context, groupID, payerMemberID string, payerIsPlaceholder bool, payeePlaceholderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return 0, s.markErr
	}
	s.markCalls = append(s.markCalls, markCall{groupID, payerMemberID, payerIsPlaceholder, payeePlaceholderID})
	return s.splitsReturned, nil
}

// recordingNotifier captures lifecycle events.
type recordingNotifier struct {
	mu        sync.Mutex
	requested []string
	resolved  []string
}

func (n *recordingNotifier) SettlementRequested(ctx context.Context, s *types.Settlement) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested = append(n.requested, s.ID)
}

func (n *recordingNotifier) SettlementResolved(ctx context.Context, s *types.Settlement) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, s.ID)
}

func newTestSettlementService() (*SettlementService, *stubSettlementStore, *stubExpenseStore, *recordingNotifier) {
	settlements := newStubSettlementStore()
	expenses := &stubExpenseStore{}
	notifier := &recordingNotifier{}
	svc := NewSettlementService(settlements, expenses, NewMemoryLockService(), notifier, 15*time.Second)
	return svc, settlements, expenses, notifier
}

func recordParams() types.RecordSettlementParams {
	return types.RecordSettlementParams{
		GroupID:         "group-1",
		FromMemberID:    "user-alice",
		FromDisplayName: "Alice",
		ToMemberID:      "user-bob",
		ToDisplayName:   "Bob",
		Amount:          25.00,
		RecordedBy:      "user-alice",
	}
}

func TestSettlementService_ApprovalBypass(t *testing.T) {
	// Auto-approval applies when the payee is a placeholder, the recorder is
	// the payee, or the payer is a placeholder. A recorder who is the payer of
	// a registered payee must wait for approval.
	tests := []struct {
		name            string
		toPlaceholder   bool
		recorderIsPayee bool
		fromPlaceholder bool
		wantPending     bool
	}{
		{"payer records, registered payee", false, false, false, true},
		{"payee records own receipt", false, true, false, false},
		{"placeholder payee", true, false, false, false},
		{"placeholder payer", false, false, true, false},
		{"placeholder payee and payer", true, false, true, false},
		{"payee records from placeholder payer", false, true, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, settlements, _, _ := newTestSettlementService()
			params := recordParams()
			params.ToIsPlaceholder = tc.toPlaceholder
			params.FromIsPlaceholder = tc.fromPlaceholder
			if tc.toPlaceholder {
				params.ToMemberID = "ph-bob"
			}
			if tc.fromPlaceholder {
				params.FromMemberID = "ph-alice"
				params.RecordedBy = "user-carol"
			}
			if tc.recorderIsPayee {
				params.RecordedBy = params.ToMemberID
			}

			result, err := svc.RecordSettlement(context.Background(), params)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPending, result.Pending)

			saved, err := settlements.GetSettlement(context.Background(), result.Settlement.ID)
			require.NoError(t, err)
			if tc.wantPending {
				assert.Equal(t, types.SettlementStatusPending, saved.Status)
				assert.Nil(t, saved.SettledAt)
			} else {
				assert.Equal(t, types.SettlementStatusApproved, saved.Status)
				assert.NotNil(t, saved.SettledAt)
			}
		})
	}
}

func TestSettlementService_RecordValidation(t *testing.T) {
	svc, _, _, _ := newTestSettlementService()

	t.Run("non-positive amount", func(t *testing.T) {
		params := recordParams()
		params.Amount = 0
		_, err := svc.RecordSettlement(context.Background(), params)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ValidationError, appErr.Type)
	})

	t.Run("self settlement", func(t *testing.T) {
		params := recordParams()
		params.ToMemberID = params.FromMemberID
		_, err := svc.RecordSettlement(context.Background(), params)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ValidationError, appErr.Type)
	})
}

func TestSettlementService_LockContention(t *testing.T) {
	locks := NewMemoryLockService()
	svc := NewSettlementService(newStubSettlementStore(), &stubExpenseStore{}, locks, nil, 15*time.Second)

	params := recordParams()
	lockKey := "settlement:" + params.GroupID + ":" + params.FromMemberID + ":" + params.ToMemberID
	release, err := locks.Acquire(context.Background(), lockKey, 15*time.Second)
	require.NoError(t, err)
	defer release()

	_, err = svc.RecordSettlement(context.Background(), params)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ConflictError, appErr.Type)
}

func TestSettlementService_ConcurrentDoubleRecord(t *testing.T) {
	// The first recording is parked inside the store while it holds the lock;
	// the second recording for the same tuple must fail fast with the
	// contention error and leave exactly one row behind.
	settlements := newStubSettlementStore()
	settlements.createEntered = make(chan struct{})
	settlements.createHold = make(chan struct{})
	svc := NewSettlementService(settlements, &stubExpenseStore{}, NewMemoryLockService(), nil, 15*time.Second)

	params := recordParams()
	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.RecordSettlement(context.Background(), params)
		firstDone <- err
	}()
	<-settlements.createEntered

	_, err := svc.RecordSettlement(context.Background(), params)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ConflictError, appErr.Type)

	close(settlements.createHold)
	require.NoError(t, <-firstDone)
	assert.Len(t, settlements.settlements, 1)
}

func TestSettlementService_PlaceholderPayeeClearsSplits(t *testing.T) {
	svc, _, expenses, _ := newTestSettlementService()
	expenses.splitsReturned = 2

	params := recordParams()
	params.ToMemberID = "ph-bob"
	params.ToIsPlaceholder = true

	result, err := svc.RecordSettlement(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, result.Pending)

	require.Len(t, expenses.markCalls, 1)
	call := expenses.markCalls[0]
	assert.Equal(t, "group-1", call.groupID)
	assert.Equal(t, "user-alice", call.payerMemberID)
	assert.False(t, call.payerIsPlaceholder)
	assert.Equal(t, "ph-bob", call.payeePlaceholderID)
}

func TestSettlementService_RegisteredPayeeDoesNotClearSplits(t *testing.T) {
	// Auto-approval for a recorder-is-payee settlement does not bulk-clear
	// splits; only placeholder payees get that treatment.
	svc, _, expenses, _ := newTestSettlementService()

	params := recordParams()
	params.RecordedBy = params.ToMemberID

	result, err := svc.RecordSettlement(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, result.Pending)
	assert.Empty(t, expenses.markCalls)
}

func TestSettlementService_NotifiesPayeeWhenPending(t *testing.T) {
	svc, _, _, notifier := newTestSettlementService()

	result, err := svc.RecordSettlement(context.Background(), recordParams())
	require.NoError(t, err)
	require.True(t, result.Pending)
	assert.Equal(t, []string{result.Settlement.ID}, notifier.requested)

	// Auto-approved settlements skip the request notification.
	params := recordParams()
	params.RecordedBy = params.ToMemberID
	_, err = svc.RecordSettlement(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, notifier.requested, 1)
}

func TestSettlementService_ApproveSettlement(t *testing.T) {
	svc, _, _, notifier := newTestSettlementService()

	result, err := svc.RecordSettlement(context.Background(), recordParams())
	require.NoError(t, err)
	id := result.Settlement.ID

	t.Run("only the payee can approve", func(t *testing.T) {
		_, err := svc.ApproveSettlement(context.Background(), id, "user-alice")
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ForbiddenError, appErr.Type)
	})

	t.Run("payee approves", func(t *testing.T) {
		updated, err := svc.ApproveSettlement(context.Background(), id, "user-bob")
		require.NoError(t, err)
		assert.Equal(t, types.SettlementStatusApproved, updated.Status)
		assert.NotNil(t, updated.SettledAt)
		assert.Equal(t, []string{id}, notifier.resolved)
	})

	t.Run("second approval fails on terminal state", func(t *testing.T) {
		_, err := svc.ApproveSettlement(context.Background(), id, "user-bob")
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.SettlementStateError, appErr.Type)
	})

	t.Run("rejection after approval fails", func(t *testing.T) {
		_, err := svc.RejectSettlement(context.Background(), id, "user-bob")
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.SettlementStateError, appErr.Type)
	})
}

func TestSettlementService_RejectSettlement(t *testing.T) {
	svc, settlements, _, _ := newTestSettlementService()

	result, err := svc.RecordSettlement(context.Background(), recordParams())
	require.NoError(t, err)
	id := result.Settlement.ID

	updated, err := svc.RejectSettlement(context.Background(), id, "user-bob")
	require.NoError(t, err)
	assert.Equal(t, types.SettlementStatusRejected, updated.Status)
	assert.Nil(t, updated.SettledAt)

	saved, err := settlements.GetSettlement(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, types.SettlementStatusRejected, saved.Status)
}

func TestSettlementService_ResolveUnknownSettlement(t *testing.T) {
	svc, _, _, _ := newTestSettlementService()

	_, err := svc.ApproveSettlement(context.Background(), "missing", "user-bob")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.NotFoundError, appErr.Type)
}

func TestSettlementService_LockReleasedAfterFailure(t *testing.T) {
	settlements := newStubSettlementStore()
	settlements.createErr = errors.New("insert failed")
	svc := NewSettlementService(settlements, &stubExpenseStore{}, NewMemoryLockService(), nil, 15*time.Second)

	params := recordParams()
	_, err := svc.RecordSettlement(context.Background(), params)
	require.Error(t, err)

	// The lock must be free again for the retry.
	settlements.createErr = nil
	_, err = svc.RecordSettlement(context.Background(), params)
	assert.NoError(t, err)
}
