package expense

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MinDescriptionLength = 3
	MaxDescriptionLength = 200
	AmountDecimalPlaces  = 2
)

// MaxAmount is the ceiling for a single expense
var MaxAmount = decimal.NewFromInt(10000)

// Kind names the rule a field failed
type Kind string

const (
	KindRequired            Kind = "REQUIRED"
	KindNotAMember          Kind = "NOT_A_MEMBER"
	KindNonPositiveAmount   Kind = "NON_POSITIVE_AMOUNT"
	KindAmountTooHigh       Kind = "AMOUNT_TOO_HIGH"
	KindInvalidPrecision    Kind = "INVALID_PRECISION"
	KindDescriptionTooShort Kind = "DESCRIPTION_TOO_SHORT"
	KindDescriptionTooLong  Kind = "DESCRIPTION_TOO_LONG"
)

// FieldError is one failed rule on one field
type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every rule an expense input failed, in field order:
// group, paid_by, amount, description
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid expense: " + strings.Join(msgs, "; ")
}

// Has reports whether any field failed with the given kind
func (e *ValidationError) Has(kind Kind) bool {
	for _, f := range e.Fields {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field string, kind Kind, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Kind: kind, Message: msg})
}

// Input is a raw request to record or rewrite an expense.
// Group is nil when the caller named no group; PaidBy is nil when the caller named no payer.
type Input struct {
	Group       *Roster
	PaidBy      *int64
	Amount      decimal.Decimal
	Description string
}

// Validate turns input into an expense ready to be stored, or explains why it cannot be.
// currentUser is the acting member (0 when anonymous) and becomes the payer when none is given.
// Validate has no side effects; the returned expense has no ID or timestamp yet.
func Validate(in Input, currentUser int64) (*Expense, error) {
	verr := &ValidationError{}

	paidBy := in.PaidBy
	if paidBy == nil && currentUser > 0 {
		paidBy = &currentUser
	}

	if in.Group == nil {
		verr.add("group", KindRequired, "This field is required.")
	}

	switch {
	case paidBy == nil:
		verr.add("paid_by", KindRequired, "This field is required.")
	case in.Group != nil && !in.Group.Has(*paidBy):
		verr.add("paid_by", KindNotAMember, fmt.Sprintf("User %d is not in this group.", *paidBy))
	}

	if field, ok := checkAmount(in.Amount); !ok {
		verr.Fields = append(verr.Fields, field)
	}

	description, field, ok := cleanDescription(in.Description)
	if !ok {
		verr.Fields = append(verr.Fields, field)
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	return &Expense{
		GroupID:     in.Group.GroupID,
		Description: description,
		Amount:      in.Amount,
		PaidBy:      *paidBy,
	}, nil
}

func checkAmount(amount decimal.Decimal) (FieldError, bool) {
	switch {
	case !amount.IsPositive():
		return FieldError{"amount", KindNonPositiveAmount, "Amount must be positive."}, false
	case amount.GreaterThan(MaxAmount):
		return FieldError{"amount", KindAmountTooHigh, "Amount must not exceed " + MaxAmount.String() + "."}, false
	case !amount.Equal(amount.Truncate(AmountDecimalPlaces)):
		return FieldError{"amount", KindInvalidPrecision, "Amount must have at most 2 decimal places."}, false
	}
	return FieldError{}, true
}

func cleanDescription(raw string) (string, FieldError, bool) {
	description := strings.TrimSpace(raw)
	switch n := utf8.RuneCountInString(description); {
	case n < MinDescriptionLength:
		return "", FieldError{"description", KindDescriptionTooShort, "Description must be at least 3 characters."}, false
	case n > MaxDescriptionLength:
		return "", FieldError{"description", KindDescriptionTooLong, "Description must be at most 200 characters."}, false
	}
	return description, FieldError{}, true
}
