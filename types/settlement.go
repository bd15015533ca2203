package types

import "time"

// SettlementStatus is the lifecycle state of a recorded settlement.
// Approved and rejected are terminal; rows are never mutated afterwards.
type SettlementStatus string

const (
	SettlementStatusPending  SettlementStatus = "pending"
	SettlementStatusApproved SettlementStatus = "approved"
	SettlementStatusRejected SettlementStatus = "rejected"
)

// Settlement is a recorded payment between two group members. Each side is
// either a registered user or a placeholder, never both.
type Settlement struct {
	ID                 string           `json:"id"`
	GroupID            string           `json:"groupId"`
	PayerUserID        *string          `json:"payerUserId,omitempty"`
	PayerPlaceholderID *string          `json:"payerPlaceholderId,omitempty"`
	PayerName          string           `json:"payerName"`
	PayeeUserID        *string          `json:"payeeUserId,omitempty"`
	PayeePlaceholderID *string          `json:"payeePlaceholderId,omitempty"`
	PayeeName          string           `json:"payeeName"`
	Amount             float64          `json:"amount"`
	Status             SettlementStatus `json:"status"`
	RequestedBy        string           `json:"requestedBy"`
	RequestedAt        time.Time        `json:"requestedAt"`
	SettledAt          *time.Time       `json:"settledAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// IsTerminal reports whether the settlement can no longer change state.
func (s *Settlement) IsTerminal() bool {
	return s.Status == SettlementStatusApproved || s.Status == SettlementStatusRejected
}

// PayerMemberID resolves the payer side to a member identifier.
func (s *Settlement) PayerMemberID() (id string, placeholder bool) {
	if s.PayerUserID != nil && *s.PayerUserID != "" {
		return *s.PayerUserID, false
	}
	if s.PayerPlaceholderID != nil && *s.PayerPlaceholderID != "" {
		return *s.PayerPlaceholderID, true
	}
	return "", false
}

// PayeeMemberID resolves the payee side to a member identifier.
func (s *Settlement) PayeeMemberID() (id string, placeholder bool) {
	if s.PayeeUserID != nil && *s.PayeeUserID != "" {
		return *s.PayeeUserID, false
	}
	if s.PayeePlaceholderID != nil && *s.PayeePlaceholderID != "" {
		return *s.PayeePlaceholderID, true
	}
	return "", false
}

// RecordSettlementParams carries everything the reconciliation engine needs to
// record one payment. Membership of RecordedBy in the group is verified by the
// caller before the engine runs.
type RecordSettlementParams struct {
	GroupID           string  `json:"groupId"`
	FromMemberID      string  `json:"fromMemberId"`
	FromIsPlaceholder bool    `json:"fromIsPlaceholder"`
	FromDisplayName   string  `json:"fromDisplayName"`
	ToMemberID        string  `json:"toMemberId"`
	ToIsPlaceholder   bool    `json:"toIsPlaceholder"`
	ToDisplayName     string  `json:"toDisplayName"`
	Amount            float64 `json:"amount"`
	RecordedBy        string  `json:"recordedBy"`
}

type RecordSettlementRequest struct {
	FromMemberID string  `json:"fromMemberId" binding:"required"`
	ToMemberID   string  `json:"toMemberId" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
}
