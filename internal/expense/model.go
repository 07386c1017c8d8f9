package expense

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single cost paid by one member and owned by one group.
// Amount, payer and group are fixed at creation; updates go through the validator again.
type Expense struct {
	ID          int64           `json:"id"`
	GroupID     int64           `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      int64           `json:"paid_by"`
	CreatedAt   time.Time       `json:"created_at"`

	// Populated via JOIN
	GroupName      string `json:"group_name,omitempty"`
	PaidByUsername string `json:"paid_by_username,omitempty"`
}

// Roster is a group's identity and current member set, as read when an
// expense is validated
type Roster struct {
	GroupID int64
	Members map[int64]struct{}
}

// NewRoster builds a roster from a list of member IDs
func NewRoster(groupID int64, memberIDs []int64) *Roster {
	members := make(map[int64]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}
	return &Roster{GroupID: groupID, Members: members}
}

// Has reports whether the user belongs to the group
func (r *Roster) Has(userID int64) bool {
	_, ok := r.Members[userID]
	return ok
}

// MemberIDs returns the member set in ascending order
func (r *Roster) MemberIDs() []int64 {
	ids := make([]int64, 0, len(r.Members))
	for id := range r.Members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ListFilter narrows an expense listing
type ListFilter struct {
	GroupID *int64
	PaidBy  *int64
	Limit   int
	Offset  int
}
