package types

import "time"

// Group represents a shared-expense group.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Currency    string    `json:"currency"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GroupMember is one participant in a group. Registered users carry a UserID;
// placeholder members are tracked by name only and are identified by the
// membership row ID itself.
type GroupMember struct {
	ID            string    `json:"id"`
	GroupID       string    `json:"groupId"`
	UserID        *string   `json:"userId,omitempty"`
	DisplayName   string    `json:"displayName"`
	IsPlaceholder bool      `json:"isPlaceholder"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// MemberID returns the identifier used for balance and settlement bookkeeping:
// the user UUID for registered members, the membership row UUID for
// placeholders. The two ID spaces are not guaranteed disjoint, so callers must
// carry IsPlaceholder alongside the ID.
func (m *GroupMember) MemberID() string {
	if !m.IsPlaceholder && m.UserID != nil {
		return *m.UserID
	}
	return m.ID
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
}

type AddMemberRequest struct {
	// UserID adds a registered user; DisplayName alone adds a placeholder.
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName" binding:"required"`
}
