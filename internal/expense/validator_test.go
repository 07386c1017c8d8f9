package expense

import (
	"errors"
	"reflect"
	"strings"
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

func ptr(v int64) *int64 {
	return &v
}

func kinds(err error) []Kind {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]Kind, len(verr.Fields))
	for i, f := range verr.Fields {
		out[i] = f.Kind
	}
	return out
}

func TestValidate_Accepts(t *testing.T) {
	group := NewRoster(10, []int64{alice, bob})

	tests := []struct {
		name        string
		in          Input
		currentUser int64
		wantPayer   int64
		wantDesc    string
	}{
		{
			name:        "explicit payer",
			in:          Input{Group: group, PaidBy: ptr(bob), Amount: dec("50"), Description: "Dinner"},
			currentUser: alice,
			wantPayer:   bob,
			wantDesc:    "Dinner",
		},
		{
			name:        "payer defaults to current user",
			in:          Input{Group: group, Amount: dec("12.50"), Description: "Taxi"},
			currentUser: alice,
			wantPayer:   alice,
			wantDesc:    "Taxi",
		},
		{
			name:        "description is trimmed",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("1"), Description: "   Pizza \n"},
			currentUser: alice,
			wantPayer:   alice,
			wantDesc:    "Pizza",
		},
		{
			name:        "ceiling is inclusive",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("10000"), Description: "Rent"},
			currentUser: alice,
			wantPayer:   alice,
			wantDesc:    "Rent",
		},
		{
			name:        "smallest unit",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("0.01"), Description: "Gum"},
			currentUser: alice,
			wantPayer:   alice,
			wantDesc:    "Gum",
		},
		{
			name:        "exactly three runes after trim",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("3"), Description: " café "},
			currentUser: alice,
			wantPayer:   alice,
			wantDesc:    "café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Validate(tt.in, tt.currentUser)
			if err != nil {
				t.Fatalf("Validate() error = %v, want nil", err)
			}
			if e.PaidBy != tt.wantPayer {
				t.Errorf("PaidBy = %d, want %d", e.PaidBy, tt.wantPayer)
			}
			if e.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", e.Description, tt.wantDesc)
			}
			if e.GroupID != 10 {
				t.Errorf("GroupID = %d, want 10", e.GroupID)
			}
			if !group.Has(e.PaidBy) {
				t.Errorf("payer %d is not a member of the group", e.PaidBy)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	group := NewRoster(10, []int64{alice, bob})
	solo := NewRoster(20, []int64{alice})

	tests := []struct {
		name        string
		in          Input
		currentUser int64
		want        []Kind
	}{
		{
			name:        "zero amount",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("0"), Description: "Lunch"},
			currentUser: alice,
			want:        []Kind{KindNonPositiveAmount},
		},
		{
			name:        "negative amount",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("-5"), Description: "Lunch"},
			currentUser: alice,
			want:        []Kind{KindNonPositiveAmount},
		},
		{
			name:        "amount above ceiling",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("10000.01"), Description: "Car"},
			currentUser: alice,
			want:        []Kind{KindAmountTooHigh},
		},
		{
			name:        "sub-cent amount",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("1.005"), Description: "Gas"},
			currentUser: alice,
			want:        []Kind{KindInvalidPrecision},
		},
		{
			name:        "two character description",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("5"), Description: "ok"},
			currentUser: alice,
			want:        []Kind{KindDescriptionTooShort},
		},
		{
			name:        "whitespace pads a short description",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("5"), Description: "   ok   "},
			currentUser: alice,
			want:        []Kind{KindDescriptionTooShort},
		},
		{
			name:        "description too long",
			in:          Input{Group: group, PaidBy: ptr(alice), Amount: dec("5"), Description: strings.Repeat("x", 201)},
			currentUser: alice,
			want:        []Kind{KindDescriptionTooLong},
		},
		{
			name:        "payer not in group",
			in:          Input{Group: solo, PaidBy: ptr(carol), Amount: dec("5"), Description: "Snacks"},
			currentUser: alice,
			want:        []Kind{KindNotAMember},
		},
		{
			name:        "defaulted payer not in group",
			in:          Input{Group: solo, Amount: dec("5"), Description: "Snacks"},
			currentUser: bob,
			want:        []Kind{KindNotAMember},
		},
		{
			name:        "anonymous caller with no payer",
			in:          Input{Group: group, Amount: dec("5"), Description: "Snacks"},
			currentUser: 0,
			want:        []Kind{KindRequired},
		},
		{
			name:        "missing group",
			in:          Input{PaidBy: ptr(alice), Amount: dec("5"), Description: "Snacks"},
			currentUser: alice,
			want:        []Kind{KindRequired},
		},
		{
			name:        "every rule reported in field order",
			in:          Input{Group: solo, PaidBy: ptr(carol), Amount: dec("0"), Description: "x"},
			currentUser: alice,
			want:        []Kind{KindNotAMember, KindNonPositiveAmount, KindDescriptionTooShort},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Validate(tt.in, tt.currentUser)
			if err == nil {
				t.Fatalf("Validate() = %+v, want error", e)
			}
			if got := kinds(err); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}

			// Same input, same answer.
			_, again := Validate(tt.in, tt.currentUser)
			if !reflect.DeepEqual(err, again) {
				t.Errorf("second Validate() error = %v, want %v", again, err)
			}
		})
	}
}

func TestValidate_RevalidatingStoredExpense(t *testing.T) {
	group := NewRoster(10, []int64{alice, bob})

	first, err := Validate(Input{Group: group, Amount: dec("19.99"), Description: "  Groceries  "}, bob)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	second, err := Validate(Input{
		Group:       group,
		PaidBy:      &first.PaidBy,
		Amount:      first.Amount,
		Description: first.Description,
	}, alice)
	if err != nil {
		t.Fatalf("re-Validate() error = %v, want nil", err)
	}
	if second.PaidBy != first.PaidBy || second.Description != first.Description || !second.Amount.Equal(first.Amount) {
		t.Errorf("re-Validate() = %+v, want %+v", second, first)
	}
}

func TestValidationError_Message(t *testing.T) {
	_, err := Validate(Input{Amount: dec("0"), Description: "ok"}, 0)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %T is not a *ValidationError", err)
	}
	if !verr.Has(KindDescriptionTooShort) || verr.Has(KindAmountTooHigh) {
		t.Errorf("Has() mismatch for %v", verr.Fields)
	}
	if !strings.HasPrefix(err.Error(), "invalid expense: group:") {
		t.Errorf("Error() = %q", err.Error())
	}
}
