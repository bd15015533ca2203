package types

// Balance is one member's aggregate position within a group. Positive
// NetAmount means the group owes the member money; negative means the member
// owes the group. In a well-formed group the net amounts sum to zero within a
// cent of rounding slack.
type Balance struct {
	MemberID      string  `json:"memberId"`
	DisplayName   string  `json:"displayName"`
	IsPlaceholder bool    `json:"isPlaceholder"`
	NetAmount     float64 `json:"netAmount"`
}

// Payment is a directed transfer recommendation, either from the debt
// simplifier (minimal transfer set) or from raw per-expense netting. Amounts
// are positive and rounded to cents; transfers at or below one cent are never
// emitted.
type Payment struct {
	FromMemberID      string  `json:"fromMemberId"`
	FromDisplayName   string  `json:"fromDisplayName"`
	FromIsPlaceholder bool    `json:"fromIsPlaceholder"`
	ToMemberID        string  `json:"toMemberId"`
	ToDisplayName     string  `json:"toDisplayName"`
	ToIsPlaceholder   bool    `json:"toIsPlaceholder"`
	Amount            float64 `json:"amount"`
}

// ExpenseRecord is the input shape for raw debt netting: one logged expense
// reduced to payer identity plus the shares owed. Either payer ID may be nil;
// a record with no usable payer ID is skipped by the netting pass.
type ExpenseRecord struct {
	PayerUserID        *string       `json:"payerUserId,omitempty"`
	PayerPlaceholderID *string       `json:"payerPlaceholderId,omitempty"`
	PayerName          string        `json:"payerName"`
	Splits             []SplitRecord `json:"splits"`
}

// SplitRecord is one participant's share within an ExpenseRecord.
type SplitRecord struct {
	ParticipantUserID        *string `json:"participantUserId,omitempty"`
	ParticipantPlaceholderID *string `json:"participantPlaceholderId,omitempty"`
	ParticipantName          string  `json:"participantName"`
	ShareAmount              float64 `json:"shareAmount"`
}

// PayerID resolves the record's payer, preferring the user ID.
func (r *ExpenseRecord) PayerID() (id string, placeholder bool) {
	if r.PayerUserID != nil && *r.PayerUserID != "" {
		return *r.PayerUserID, false
	}
	if r.PayerPlaceholderID != nil && *r.PayerPlaceholderID != "" {
		return *r.PayerPlaceholderID, true
	}
	return "", false
}

// ParticipantID resolves the split's participant, preferring the user ID.
func (s *SplitRecord) ParticipantID() (id string, placeholder bool) {
	if s.ParticipantUserID != nil && *s.ParticipantUserID != "" {
		return *s.ParticipantUserID, false
	}
	if s.ParticipantPlaceholderID != nil && *s.ParticipantPlaceholderID != "" {
		return *s.ParticipantPlaceholderID, true
	}
	return "", false
}
