package split

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EVEN SPLIT
// Divides an amount equally among members in whole cents
// =============================================================================

var (
	ErrNoParticipants = errors.New("at least one participant is required")
	ErrNegativeAmount = errors.New("amounts cannot be negative")
)

var one = decimal.NewFromInt(1)

// Share is one member's portion of an amount
type Share struct {
	MemberID int64
	Amount   decimal.Decimal
}

// Even divides amount among members so that the shares sum to exactly
// amount rounded to cents.
//
// When the cents do not divide evenly, the leftover cents go one each to
// members in ascending ID order, starting at position seed mod n. Passing the
// expense ID as seed spreads leftover cents across members instead of
// always charging the lowest ID. Shares are returned in ascending ID order.
func Even(amount decimal.Decimal, members []int64, seed int64) ([]Share, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	ids := slices.Clone(members)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, ErrNoParticipants
	}

	n := int64(len(ids))
	cents := amount.Round(2).Shift(2)
	base, rem := cents.QuoRem(decimal.NewFromInt(n), 0)
	leftover := rem.IntPart()

	start := seed % n
	if start < 0 {
		start += n
	}

	shares := make([]Share, len(ids))
	for i, id := range ids {
		c := base
		if (int64(i)-start+n)%n < leftover {
			c = c.Add(one)
		}
		shares[i] = Share{MemberID: id, Amount: c.Shift(-2)}
	}

	return shares, nil
}
