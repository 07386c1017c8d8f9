package balance

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Transfer is one suggested payment that moves balances towards zero
type Transfer struct {
	From   int64
	To     int64
	Amount decimal.Decimal
}

type position struct {
	member int64
	amount decimal.Decimal
}

// SuggestTransfers sorts debtors and creditors once, each in descending order
// of size (ties by member id), and pairs them off in that order until every
// balance is settled. Applying the result zeroes every balance of a zero-sum
// input. Nothing is recorded; the suggestions are derived data.
func SuggestTransfers(balances map[int64]decimal.Decimal) []Transfer {
	var debtors, creditors []position
	for id, amt := range balances {
		switch amt.Sign() {
		case -1:
			debtors = append(debtors, position{id, amt.Neg()})
		case 1:
			creditors = append(creditors, position{id, amt})
		}
	}

	largestFirst := func(a, b position) int {
		if c := b.amount.Cmp(a.amount); c != 0 {
			return c
		}
		return cmp.Compare(a.member, b.member)
	}
	slices.SortFunc(debtors, largestFirst)
	slices.SortFunc(creditors, largestFirst)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := decimal.Min(d.amount, c.amount)
		transfers = append(transfers, Transfer{From: d.member, To: c.member, Amount: amount})

		d.amount = d.amount.Sub(amount)
		c.amount = c.amount.Sub(amount)
		if d.amount.IsZero() {
			i++
		}
		if c.amount.IsZero() {
			j++
		}
	}

	return transfers
}
