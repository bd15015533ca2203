package types

import "time"

// Expense represents a shared expense within a group. Exactly one of
// PaidByUserID / PaidByPlaceholderID is set.
type Expense struct {
	ID                  string         `json:"id"`
	GroupID             string         `json:"groupId"`
	PaidByUserID        *string        `json:"paidByUserId,omitempty"`
	PaidByPlaceholderID *string        `json:"paidByPlaceholderId,omitempty"`
	PayerName           string         `json:"payerName"`
	Description         string         `json:"description"`
	Amount              float64        `json:"amount"`
	Currency            string         `json:"currency"`
	Category            string         `json:"category,omitempty"`
	CreatedBy           string         `json:"createdBy"`
	Splits              []ExpenseSplit `json:"splits,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// ExpenseSplit is one member's share of an expense. Exactly one of
// ParticipantUserID / ParticipantPlaceholderID is set.
type ExpenseSplit struct {
	ID                       string  `json:"id"`
	ExpenseID                string  `json:"expenseId"`
	ParticipantUserID        *string `json:"participantUserId,omitempty"`
	ParticipantPlaceholderID *string `json:"participantPlaceholderId,omitempty"`
	ParticipantName          string  `json:"participantName"`
	ShareAmount              float64 `json:"shareAmount"`
	IsSettled                bool    `json:"isSettled"`
}

// PayerMemberID resolves the payer to a single member identifier, preferring
// the user ID. Returns "" when neither side is set.
func (e *Expense) PayerMemberID() (id string, placeholder bool) {
	if e.PaidByUserID != nil && *e.PaidByUserID != "" {
		return *e.PaidByUserID, false
	}
	if e.PaidByPlaceholderID != nil && *e.PaidByPlaceholderID != "" {
		return *e.PaidByPlaceholderID, true
	}
	return "", false
}

// ParticipantMemberID resolves the split participant to a single member
// identifier. Returns "" when neither side is set.
func (s *ExpenseSplit) ParticipantMemberID() (id string, placeholder bool) {
	if s.ParticipantUserID != nil && *s.ParticipantUserID != "" {
		return *s.ParticipantUserID, false
	}
	if s.ParticipantPlaceholderID != nil && *s.ParticipantPlaceholderID != "" {
		return *s.ParticipantPlaceholderID, true
	}
	return "", false
}

type CreateExpenseRequest struct {
	Description   string              `json:"description" binding:"required"`
	Amount        float64             `json:"amount" binding:"required,gt=0"`
	Currency      string              `json:"currency"`
	Category      string              `json:"category"`
	PayerMemberID string              `json:"payerMemberId" binding:"required"`
	Splits        []SplitShareRequest `json:"splits" binding:"required,min=1"`
}

// SplitShareRequest assigns a share of an expense to a group member. A zero
// ShareAmount across all splits means "split equally".
type SplitShareRequest struct {
	MemberID    string  `json:"memberId" binding:"required"`
	ShareAmount float64 `json:"shareAmount"`
}
