package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/jackc/pgx/v5"
)

// ExpenseStore implements store.ExpenseStore using PostgreSQL.
type ExpenseStore struct {
	db DB
}

// NewExpenseStore creates a new ExpenseStore instance.
func NewExpenseStore(db DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

const expenseColumns = `id, group_id, paid_by_user_id, paid_by_placeholder_id, payer_name,
		description, amount, currency, category, created_by, created_at, updated_at`

// CreateExpense inserts the expense and all of its splits in one transaction
// so a half-written expense never becomes visible to balance computation.
func (s *ExpenseStore) CreateExpense(ctx context.Context, expense *types.Expense) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("beginning expense transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO expenses (
			group_id, paid_by_user_id, paid_by_placeholder_id, payer_name,
			description, amount, currency, category, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id string
	err = tx.QueryRow(ctx, query,
		expense.GroupID,
		expense.PaidByUserID,
		expense.PaidByPlaceholderID,
		expense.PayerName,
		expense.Description,
		expense.Amount,
		expense.Currency,
		expense.Category,
		expense.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating expense: %w", err)
	}

	splitQuery := `
		INSERT INTO expense_splits (
			expense_id, participant_user_id, participant_placeholder_id,
			participant_name, share_amount
		)
		VALUES ($1, $2, $3, $4, $5)`

	for i := range expense.Splits {
		sp := &expense.Splits[i]
		if _, err := tx.Exec(ctx, splitQuery,
			id,
			sp.ParticipantUserID,
			sp.ParticipantPlaceholderID,
			sp.ParticipantName,
			sp.ShareAmount,
		); err != nil {
			return "", fmt.Errorf("creating expense split: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("committing expense: %w", err)
	}

	return id, nil
}

// GetExpense retrieves an expense with its splits.
func (s *ExpenseStore) GetExpense(ctx context.Context, id string) (*types.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND deleted_at IS NULL`

	expense := &types.Expense{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PaidByUserID,
		&expense.PaidByPlaceholderID,
		&expense.PayerName,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.Category,
		&expense.CreatedBy,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("getting expense %s: %w", id, err)
	}

	splits, err := s.listSplits(ctx, []string{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.Splits = splits[expense.ID]

	return expense, nil
}

// ListExpenses retrieves all live expenses for a group with splits attached,
// newest first.
func (s *ExpenseStore) ListExpenses(ctx context.Context, groupID string) ([]types.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE group_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses for group %s: %w", groupID, err)
	}
	defer rows.Close()

	var expenses []types.Expense
	var ids []string
	for rows.Next() {
		var expense types.Expense
		err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PaidByUserID,
			&expense.PaidByPlaceholderID,
			&expense.PayerName,
			&expense.Description,
			&expense.Amount,
			&expense.Currency,
			&expense.Category,
			&expense.CreatedBy,
			&expense.CreatedAt,
			&expense.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
		ids = append(ids, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return expenses, nil
	}

	splits, err := s.listSplits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].Splits = splits[expenses[i].ID]
	}

	return expenses, nil
}

// DeleteExpense soft-deletes an expense.
func (s *ExpenseStore) DeleteExpense(ctx context.Context, id string) error {
	query := `UPDATE expenses SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting expense %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}

// MarkSplitsSettled bulk-marks every outstanding split owed by the payer on
// expenses paid by the given placeholder payee. The settlement amount is not
// reconciled split-by-split; all matching outstanding splits are cleared.
func (s *ExpenseStore) MarkSplitsSettled(ctx context.Context, groupID, payerMemberID string, payerIsPlaceholder bool, payeePlaceholderID string) (int64, error) {
	participantColumn := "participant_user_id"
	if payerIsPlaceholder {
		participantColumn = "participant_placeholder_id"
	}

	query := fmt.Sprintf(`
		UPDATE expense_splits es
		SET is_settled = TRUE
		FROM expenses e
		WHERE es.expense_id = e.id
		  AND e.group_id = $1
		  AND e.deleted_at IS NULL
		  AND e.paid_by_placeholder_id = $2
		  AND es.%s = $3
		  AND es.is_settled = FALSE`, participantColumn)

	tag, err := s.db.Exec(ctx, query, groupID, payeePlaceholderID, payerMemberID)
	if err != nil {
		return 0, fmt.Errorf("marking splits settled: %w", err)
	}

	return tag.RowsAffected(), nil
}

// listSplits fetches splits for a set of expenses, keyed by expense ID.
func (s *ExpenseStore) listSplits(ctx context.Context, expenseIDs []string) (map[string][]types.ExpenseSplit, error) {
	query := `
		SELECT id, expense_id, participant_user_id, participant_placeholder_id,
			participant_name, share_amount, is_settled
		FROM expense_splits
		WHERE expense_id = ANY($1)
		ORDER BY id`

	rows, err := s.db.Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("listing expense splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[string][]types.ExpenseSplit)
	for rows.Next() {
		var sp types.ExpenseSplit
		err := rows.Scan(
			&sp.ID,
			&sp.ExpenseID,
			&sp.ParticipantUserID,
			&sp.ParticipantPlaceholderID,
			&sp.ParticipantName,
			&sp.ShareAmount,
			&sp.IsSettled,
		)
		if err != nil {
			return nil, err
		}
		splits[sp.ExpenseID] = append(splits[sp.ExpenseID], sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return splits, nil
}
