package services

import (
	"context"

	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/internal/split"
	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
)

// BalanceService derives balance views from the expense and settlement
// ledgers. Nothing here is cached or mutated in place: every read recomputes
// from storage, so views can be stale-free at the cost of recomputation,
// which is fine at the group sizes this application serves.
type BalanceService struct {
	groups      store.GroupStore
	expenses    store.ExpenseStore
	settlements store.SettlementStore
}

func NewBalanceService(groups store.GroupStore, expenses store.ExpenseStore, settlements store.SettlementStore) *BalanceService {
	return &BalanceService{
		groups:      groups,
		expenses:    expenses,
		settlements: settlements,
	}
}

// GroupBalances aggregates each member's net position from all live expenses
// and all approved settlements. Members with no activity still appear, with a
// zero balance.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID string) ([]types.Balance, error) {
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	expenses, err := s.expenses.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	settlements, err := s.settlements.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	nets := make(map[string]float64)
	order := make([]types.Balance, 0, len(members))
	index := make(map[string]int)

	register := func(id, name string, placeholder bool) {
		if _, ok := index[id]; !ok {
			index[id] = len(order)
			order = append(order, types.Balance{
				MemberID:      id,
				DisplayName:   name,
				IsPlaceholder: placeholder,
			})
		}
	}

	for i := range members {
		m := &members[i]
		register(m.MemberID(), m.DisplayName, m.IsPlaceholder)
	}

	for i := range expenses {
		exp := &expenses[i]
		payerID, payerPlaceholder := exp.PayerMemberID()
		if payerID == "" {
			continue
		}
		register(payerID, exp.PayerName, payerPlaceholder)

		for j := range exp.Splits {
			sp := &exp.Splits[j]
			participantID, participantPlaceholder := sp.ParticipantMemberID()
			if participantID == "" || participantID == payerID {
				continue
			}
			register(participantID, sp.ParticipantName, participantPlaceholder)
			nets[participantID] -= sp.ShareAmount
			nets[payerID] += sp.ShareAmount
		}
	}

	for i := range settlements {
		stl := &settlements[i]
		if stl.Status != types.SettlementStatusApproved {
			continue
		}
		payerID, payerPlaceholder := stl.PayerMemberID()
		payeeID, payeePlaceholder := stl.PayeeMemberID()
		if payerID == "" || payeeID == "" {
			continue
		}
		register(payerID, stl.PayerName, payerPlaceholder)
		register(payeeID, stl.PayeeName, payeePlaceholder)
		nets[payerID] += stl.Amount
		nets[payeeID] -= stl.Amount
	}

	for i := range order {
		order[i].NetAmount = split.RoundCents(nets[order[i].MemberID])
	}

	return order, nil
}

// SimplifiedPayments returns the minimal transfer set that settles the
// group's current balances.
func (s *BalanceService) SimplifiedPayments(ctx context.Context, groupID string) ([]types.Payment, error) {
	balances, err := s.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return split.Simplify(balances), nil
}

// RawPayments returns per-expense pairwise debts, netted within each member
// pair but not minimized across pairs. Settled splits are excluded: they have
// already been repaid through a settlement.
func (s *BalanceService) RawPayments(ctx context.Context, groupID string) ([]types.Payment, error) {
	expenses, err := s.expenses.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	records := make([]types.ExpenseRecord, 0, len(expenses))
	for i := range expenses {
		exp := &expenses[i]
		record := types.ExpenseRecord{
			PayerUserID:        exp.PaidByUserID,
			PayerPlaceholderID: exp.PaidByPlaceholderID,
			PayerName:          exp.PayerName,
		}
		for j := range exp.Splits {
			sp := &exp.Splits[j]
			if sp.IsSettled {
				continue
			}
			record.Splits = append(record.Splits, types.SplitRecord{
				ParticipantUserID:        sp.ParticipantUserID,
				ParticipantPlaceholderID: sp.ParticipantPlaceholderID,
				ParticipantName:          sp.ParticipantName,
				ShareAmount:              sp.ShareAmount,
			})
		}
		records = append(records, record)
	}

	return split.NetFromExpenses(records), nil
}
