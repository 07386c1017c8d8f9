package balance

import (
	"slices"
)

// MemberBalance is one line of a group's balance sheet.
// Positive means the member is owed money.
type MemberBalance struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Balance  string `json:"balance" example:"-25.00"`
}

// BalancesResponse represents the balance sheet of a group
type BalancesResponse struct {
	GroupID  int64            `json:"group_id"`
	Version  int64            `json:"version"`
	Balances []*MemberBalance `json:"balances"`
}

// TransferResponse is one suggested payment
type TransferResponse struct {
	From         int64  `json:"from"`
	FromUsername string `json:"from_username,omitempty"`
	To           int64  `json:"to"`
	ToUsername   string `json:"to_username,omitempty"`
	Amount       string `json:"amount" example:"25.00"`
}

// TransfersResponse represents the payments that would settle a group
type TransfersResponse struct {
	GroupID   int64               `json:"group_id"`
	Version   int64               `json:"version"`
	Transfers []*TransferResponse `json:"transfers"`
}

// ToResponse lists balances in ascending member order
func (r *Result) ToResponse() *BalancesResponse {
	ids := make([]int64, 0, len(r.Balances))
	for id := range r.Balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	lines := make([]*MemberBalance, len(ids))
	for i, id := range ids {
		lines[i] = &MemberBalance{
			UserID:   id,
			Username: r.Usernames[id],
			Balance:  r.Balances[id].StringFixed(2),
		}
	}

	return &BalancesResponse{
		GroupID:  r.GroupID,
		Version:  r.Version,
		Balances: lines,
	}
}

// ToTransfersResponse converts transfer suggestions to their DTO
func (r *Result) ToTransfersResponse(transfers []Transfer) *TransfersResponse {
	out := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		out[i] = &TransferResponse{
			From:         t.From,
			FromUsername: r.Usernames[t.From],
			To:           t.To,
			ToUsername:   r.Usernames[t.To],
			Amount:       t.Amount.StringFixed(2),
		}
	}

	return &TransfersResponse{
		GroupID:   r.GroupID,
		Version:   r.Version,
		Transfers: out,
	}
}
