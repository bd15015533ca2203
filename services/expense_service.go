package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/internal/split"
	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/pkg/valueobjects"
	"github.com/SmartSplit/smart-split-backend/types"
)

// ExpenseService manages the expense ledger. Amounts are validated through
// the Money value object so malformed or sub-cent inputs never reach storage.
type ExpenseService struct {
	expenses store.ExpenseStore
	groups   *GroupService
}

func NewExpenseService(expenses store.ExpenseStore, groups *GroupService) *ExpenseService {
	return &ExpenseService{expenses: expenses, groups: groups}
}

// CreateExpense logs a shared expense. When every split share is zero the
// amount is divided equally, with leftover cents going to the earliest
// participants; otherwise the explicit shares must sum to the expense amount.
func (s *ExpenseService) CreateExpense(ctx context.Context, groupID, creatorID string, req *types.CreateExpenseRequest) (*types.Expense, error) {
	currency := req.Currency
	if currency == "" {
		group, err := s.groups.GetGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		currency = group.Currency
	}

	amount, err := valueobjects.NewMoneyFromFloat(req.Amount, currency)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperrors.ValidationFailed("Expense amount must be positive", "")
	}
	if len(req.Splits) == 0 {
		return nil, apperrors.ValidationFailed("Expense needs at least one split", "")
	}

	payer, err := s.groups.ResolveMember(ctx, groupID, req.PayerMemberID)
	if err != nil {
		return nil, err
	}

	shares, err := resolveShares(amount, req.Splits)
	if err != nil {
		return nil, err
	}

	expense := &types.Expense{
		GroupID:     groupID,
		PayerName:   payer.DisplayName,
		Description: req.Description,
		Amount:      amount.Float64(),
		Currency:    string(amount.Currency()),
		Category:    req.Category,
		CreatedBy:   creatorID,
	}
	setMemberRef(&expense.PaidByUserID, &expense.PaidByPlaceholderID, payer)

	for i, sr := range req.Splits {
		participant, err := s.groups.ResolveMember(ctx, groupID, sr.MemberID)
		if err != nil {
			return nil, err
		}
		expSplit := types.ExpenseSplit{
			ParticipantName: participant.DisplayName,
			ShareAmount:     shares[i],
		}
		setMemberRef(&expSplit.ParticipantUserID, &expSplit.ParticipantPlaceholderID, participant)
		expense.Splits = append(expense.Splits, expSplit)
	}

	id, err := s.expenses.CreateExpense(ctx, expense)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	expense.ID = id
	return expense, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (*types.Expense, error) {
	expense, err := s.expenses.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Expense", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return expense, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]types.Expense, error) {
	expenses, err := s.expenses.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense. Only its creator may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id, userID string) error {
	expense, err := s.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if expense.CreatedBy != userID {
		return apperrors.Forbidden("Only the creator can delete an expense",
			fmt.Sprintf("Expense ID: %s", id))
	}
	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Expense", id)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// resolveShares turns the request splits into concrete per-participant
// amounts. All-zero shares mean equal split; anything else must add up to the
// expense amount within half a cent.
func resolveShares(amount *valueobjects.Money, splits []types.SplitShareRequest) ([]float64, error) {
	allZero := true
	var sum float64
	for _, sr := range splits {
		if sr.ShareAmount < 0 {
			return nil, apperrors.ValidationFailed("Split shares cannot be negative", "")
		}
		if sr.ShareAmount != 0 {
			allZero = false
		}
		sum += sr.ShareAmount
	}

	shares := make([]float64, len(splits))
	if allZero {
		parts, err := amount.Split(len(splits))
		if err != nil {
			return nil, err
		}
		for i, p := range parts {
			shares[i] = p.Float64()
		}
		return shares, nil
	}

	if math.Abs(sum-amount.Float64()) > 0.005 {
		return nil, apperrors.ValidationFailed("Split shares must sum to the expense amount",
			fmt.Sprintf("shares total %.2f, expense amount %.2f", sum, amount.Float64()))
	}
	for i, sr := range splits {
		shares[i] = split.RoundCents(sr.ShareAmount)
	}
	return shares, nil
}

func setMemberRef(userID, placeholderID **string, member *types.GroupMember) {
	id := member.MemberID()
	if member.IsPlaceholder {
		*placeholderID = &id
	} else {
		*userID = &id
	}
}
