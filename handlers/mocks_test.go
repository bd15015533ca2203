package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
)

// In-memory store fakes shared by the handler tests. They mirror the postgres
// stores' contracts: ErrNotFound for missing rows and a pending-only guard on
// settlement transitions.

type memGroupStore struct {
	mu      sync.Mutex
	groups  map[string]*types.Group
	members map[string][]types.GroupMember
	nextID  int
}

func newMemGroupStore() *memGroupStore {
	return &memGroupStore{
		groups:  make(map[string]*types.Group),
		members: make(map[string][]types.GroupMember),
	}
}

func (s *memGroupStore) CreateGroup(ctx context.Context, group *types.Group, creatorName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("group-%d", s.nextID)
	saved := *group
	saved.ID = id
	s.groups[id] = &saved
	userID := group.CreatedBy
	s.members[id] = append(s.members[id], types.GroupMember{
		ID:          fmt.Sprintf("gm-%d", s.nextID),
		GroupID:     id,
		UserID:      &userID,
		DisplayName: creatorName,
		JoinedAt:    time.Now(),
	})
	return id, nil
}

func (s *memGroupStore) GetGroup(ctx context.Context, id string) (*types.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *group
	return &copied, nil
}

func (s *memGroupStore) ListGroupsForUser(ctx context.Context, userID string) ([]types.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Group
	for id, members := range s.members {
		for _, m := range members {
			if !m.IsPlaceholder && m.UserID != nil && *m.UserID == userID {
				out = append(out, *s.groups[id])
			}
		}
	}
	return out, nil
}

func (s *memGroupStore) AddMember(ctx context.Context, member *types.GroupMember) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("gm-%d", s.nextID)
	saved := *member
	saved.ID = id
	s.members[member.GroupID] = append(s.members[member.GroupID], saved)
	return id, nil
}

func (s *memGroupStore) ListMembers(ctx context.Context, groupID string) ([]types.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.GroupMember(nil), s.members[groupID]...), nil
}

func (s *memGroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members[groupID] {
		if !m.IsPlaceholder && m.UserID != nil && *m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type memSettlementStore struct {
	mu          sync.Mutex
	settlements map[string]*types.Settlement
	nextID      int
}

func newMemSettlementStore() *memSettlementStore {
	return &memSettlementStore{settlements: make(map[string]*types.Settlement)}
}

func (s *memSettlementStore) CreateSettlement(ctx context.Context, settlement *types.Settlement) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("stl-%d", s.nextID)
	saved := *settlement
	saved.ID = id
	s.settlements[id] = &saved
	return id, nil
}

func (s *memSettlementStore) GetSettlement(ctx context.Context, id string) (*types.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settlement, ok := s.settlements[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *settlement
	return &copied, nil
}

func (s *memSettlementStore) ListSettlements(ctx context.Context, groupID string) ([]types.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Settlement
	for _, settlement := range s.settlements {
		if settlement.GroupID == groupID {
			out = append(out, *settlement)
		}
	}
	return out, nil
}

func (s *memSettlementStore) ListPendingForPayee(ctx context.Context, payeeUserID string) ([]types.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Settlement
	for _, settlement := range s.settlements {
		if settlement.Status == types.SettlementStatusPending &&
			settlement.PayeeUserID != nil && *settlement.PayeeUserID == payeeUserID {
			out = append(out, *settlement)
		}
	}
	return out, nil
}

func (s *memSettlementStore) TransitionStatus(ctx context.Context, id string, to types.SettlementStatus) (*types.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settlement, ok := s.settlements[id]
	if !ok || settlement.Status != types.SettlementStatusPending {
		return nil, store.ErrNotFound
	}
	settlement.Status = to
	if to == types.SettlementStatusApproved {
		now := time.Now().UTC()
		settlement.SettledAt = &now
	}
	copied := *settlement
	return &copied, nil
}

type memExpenseStore struct {
	mu       sync.Mutex
	expenses map[string]*types.Expense
	nextID   int
}

func newMemExpenseStore() *memExpenseStore {
	return &memExpenseStore{expenses: make(map[string]*types.Expense)}
}

func (s *memExpenseStore) CreateExpense(ctx context.Context, expense *types.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("exp-%d", s.nextID)
	saved := *expense
	saved.ID = id
	s.expenses[id] = &saved
	return id, nil
}

func (s *memExpenseStore) GetExpense(ctx context.Context, id string) (*types.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expense, ok := s.expenses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *expense
	return &copied, nil
}

func (s *memExpenseStore) ListExpenses(ctx context.Context, groupID string) ([]types.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Expense
	for _, expense := range s.expenses {
		if expense.GroupID == groupID {
			out = append(out, *expense)
		}
	}
	return out, nil
}

func (s *memExpenseStore) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *memExpenseStore) MarkSplitsSettled(ctx context.Context, groupID, payerMemberID string, payerIsPlaceholder bool, payeePlaceholderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, expense := range s.expenses {
		if expense.GroupID != groupID || expense.PaidByPlaceholderID == nil || *expense.PaidByPlaceholderID != payeePlaceholderID {
			continue
		}
		for i := range expense.Splits {
			sp := &expense.Splits[i]
			if sp.IsSettled {
				continue
			}
			id, placeholder := sp.ParticipantMemberID()
			if id == payerMemberID && placeholder == payerIsPlaceholder {
				sp.IsSettled = true
				n++
			}
		}
	}
	return n, nil
}
