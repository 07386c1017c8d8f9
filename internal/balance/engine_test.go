package balance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sum(balances map[int64]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b)
	}
	return total
}

func assertBalances(t *testing.T, got map[int64]decimal.Decimal, want map[int64]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d balances %v, want %d", len(got), got, len(want))
	}
	for id, w := range want {
		b, ok := got[id]
		if !ok {
			t.Errorf("member %d missing from %v", id, got)
			continue
		}
		if !b.Equal(dec(w)) {
			t.Errorf("member %d balance = %s, want %s", id, b, w)
		}
	}
}

func TestCompute_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		members  []int64
		expenses []Entry
		want     map[int64]string
	}{
		{
			name:     "one expense, two members",
			members:  []int64{alice, bob},
			expenses: []Entry{{ID: 1, PaidBy: alice, Amount: dec("50")}},
			want:     map[int64]string{alice: "25", bob: "-25"},
		},
		{
			name:    "second payer offsets the first",
			members: []int64{alice, bob},
			expenses: []Entry{
				{ID: 1, PaidBy: alice, Amount: dec("50")},
				{ID: 2, PaidBy: bob, Amount: dec("30")},
			},
			want: map[int64]string{alice: "10", bob: "-10"},
		},
		{
			name:    "no members, no expenses",
			members: nil,
			want:    map[int64]string{},
		},
		{
			name:    "members without expenses start at zero",
			members: []int64{alice, bob, carol},
			want:    map[int64]string{alice: "0", bob: "0", carol: "0"},
		},
		{
			name:     "leftover cent goes to the seeded member",
			members:  []int64{alice, bob, carol},
			expenses: []Entry{{ID: 1, PaidBy: alice, Amount: dec("10")}},
			// 1000 cents / 3 = 333 r1; seed 1 gives the extra cent to bob
			want: map[int64]string{alice: "6.67", bob: "-3.34", carol: "-3.33"},
		},
		{
			name:     "sole member pays for themselves",
			members:  []int64{alice},
			expenses: []Entry{{ID: 4, PaidBy: alice, Amount: dec("99.99")}},
			want:     map[int64]string{alice: "0"},
		},
		{
			name:    "former member who paid keeps a balance",
			members: []int64{alice, bob},
			expenses: []Entry{
				{ID: 1, PaidBy: carol, Amount: dec("30")},
			},
			want: map[int64]string{alice: "-15", bob: "-15", carol: "30"},
		},
		{
			name:     "duplicate member ids count once",
			members:  []int64{alice, bob, alice},
			expenses: []Entry{{ID: 1, PaidBy: bob, Amount: dec("8")}},
			want:     map[int64]string{alice: "-4", bob: "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.members, tt.expenses)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			assertBalances(t, got, tt.want)
			if s := sum(got); !s.IsZero() {
				t.Errorf("balances sum to %s, want 0", s)
			}
		})
	}
}

func TestCompute_NoMembersWithExpenses(t *testing.T) {
	_, err := Compute(nil, []Entry{{ID: 1, PaidBy: alice, Amount: dec("10")}})
	if !errors.Is(err, ErrDivisionUndefined) {
		t.Errorf("Compute() error = %v, want ErrDivisionUndefined", err)
	}
}

func TestCompute_ZeroSumAndOrderIndependence(t *testing.T) {
	members := []int64{4, 9, 2, 7, 5, 11, 3}
	amounts := []string{"0.01", "0.05", "1", "9999.99", "10000", "33.33", "12.34", "0.07", "100.01", "7.77"}

	var expenses []Entry
	for i, a := range amounts {
		expenses = append(expenses, Entry{
			ID:     int64(i + 1),
			PaidBy: members[i%len(members)],
			Amount: dec(a),
		})
	}

	forward, err := Compute(members, expenses)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if s := sum(forward); !s.IsZero() {
		t.Fatalf("balances sum to %s, want 0", s)
	}

	reversed := make([]Entry, len(expenses))
	for i, e := range expenses {
		reversed[len(expenses)-1-i] = e
	}
	backward, err := Compute(members, reversed)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	for id, b := range forward {
		if !b.Equal(backward[id]) {
			t.Errorf("member %d: %s forward, %s reversed", id, b, backward[id])
		}
		if !b.Equal(b.Round(2)) {
			t.Errorf("member %d balance %s is not whole cents", id, b)
		}
	}
}
