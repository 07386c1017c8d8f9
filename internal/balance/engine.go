// Package balance folds a group's expense history into net balances per
// member and derives who should pay whom to settle them.
//
// A positive balance means the member is owed money; a negative balance
// means the member owes money. Balances of a group always sum to zero.
package balance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/expense/split"
)

// ErrDivisionUndefined is returned when a group without members has expenses to divide
var ErrDivisionUndefined = errors.New("cannot divide expenses among zero members")

// Entry is the part of an expense the fold needs
type Entry struct {
	ID     int64
	PaidBy int64
	Amount decimal.Decimal
}

// Compute returns the net balance of every current member, and of any
// former member who still pays for an expense in history.
//
// Each expense credits its payer with the amount and debits every current
// member, payer included, with an even share in whole cents. Leftover cents
// are assigned by expense ID, so the result does not depend on the order of
// expenses.
func Compute(members []int64, expenses []Entry) (map[int64]decimal.Decimal, error) {
	balances := make(map[int64]decimal.Decimal, len(members))
	for _, id := range members {
		balances[id] = decimal.Zero
	}

	if len(expenses) == 0 {
		return balances, nil
	}
	if len(balances) == 0 {
		return nil, ErrDivisionUndefined
	}

	ids := make([]int64, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, e := range expenses {
		shares, err := split.Even(e.Amount, ids, e.ID)
		if err != nil {
			return nil, fmt.Errorf("split expense %d: %w", e.ID, err)
		}

		// Amounts are stored in cents, so this matches the sum of the shares.
		balances[e.PaidBy] = balances[e.PaidBy].Add(e.Amount.Round(2))
		for _, s := range shares {
			balances[s.MemberID] = balances[s.MemberID].Sub(s.Amount)
		}
	}

	return balances, nil
}
