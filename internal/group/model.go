package group

import "time"

// Group is a named set of members that shares one expense ledger.
// Version increases with every change to the ledger or the member set.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Populated via COUNT
	MemberCount int `json:"member_count"`
}

// Member is a user's membership in a group
type Member struct {
	GroupID  int64     `json:"group_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// Populated from JOIN
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
