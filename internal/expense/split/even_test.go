package split

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEven(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		members []int64
		seed    int64
		want    map[int64]string
		wantErr error
	}{
		{
			name:    "divides evenly",
			amount:  "50",
			members: []int64{1, 2},
			want:    map[int64]string{1: "25", 2: "25"},
		},
		{
			name:    "leftover cent goes to first member at seed zero",
			amount:  "100",
			members: []int64{3, 1, 2},
			want:    map[int64]string{1: "33.34", 2: "33.33", 3: "33.33"},
		},
		{
			name:    "seed rotates leftover cents",
			amount:  "100",
			members: []int64{1, 2, 3},
			seed:    2,
			want:    map[int64]string{1: "33.33", 2: "33.33", 3: "33.34"},
		},
		{
			name:    "two leftover cents wrap around",
			amount:  "0.05",
			members: []int64{1, 2, 3},
			seed:    2,
			want:    map[int64]string{1: "0.02", 2: "0.01", 3: "0.02"},
		},
		{
			name:    "negative seed",
			amount:  "0.10",
			members: []int64{1, 2, 3},
			seed:    -1,
			want:    map[int64]string{1: "0.03", 2: "0.03", 3: "0.04"},
		},
		{
			name:    "duplicate members count once",
			amount:  "10",
			members: []int64{1, 1, 2},
			want:    map[int64]string{1: "5", 2: "5"},
		},
		{
			name:    "zero amount",
			amount:  "0",
			members: []int64{1, 2},
			want:    map[int64]string{1: "0", 2: "0"},
		},
		{
			name:    "no members",
			amount:  "10",
			members: nil,
			wantErr: ErrNoParticipants,
		},
		{
			name:    "negative amount",
			amount:  "-1",
			members: []int64{1},
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Even(dec(tt.amount), tt.members, tt.seed)
			if err != tt.wantErr {
				t.Fatalf("Even() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("Even() returned %d shares, want %d", len(shares), len(tt.want))
			}

			total := decimal.Zero
			for i, s := range shares {
				if i > 0 && shares[i-1].MemberID >= s.MemberID {
					t.Errorf("shares not in ascending member order: %v", shares)
				}
				if !s.Amount.Equal(dec(tt.want[s.MemberID])) {
					t.Errorf("member %d share = %s, want %s", s.MemberID, s.Amount, tt.want[s.MemberID])
				}
				total = total.Add(s.Amount)
			}
			if !total.Equal(dec(tt.amount).Round(2)) {
				t.Errorf("shares sum to %s, want %s", total, tt.amount)
			}
		})
	}
}
