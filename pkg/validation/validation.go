// Package validation runs struct-tag validation on request DTOs with a single
// shared validator and turns its errors into response field details.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fkhayef/groupledger/pkg/response"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("username", isUsername); err != nil {
		panic(err)
	}
	return v
}

// isUsername allows ASCII letters, digits and @ . + - _
func isUsername(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("@.+-_", r):
		default:
			return false
		}
	}
	return true
}

// Struct checks v against its validate tags. A failure is a
// validator.ValidationErrors listing fields in declaration order.
func Struct(v any) error {
	return validate.Struct(v)
}

// Details converts a validation failure into response field details.
// ok is false when err is not a validation failure.
func Details(err error) (details []response.FieldDetail, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	details = make([]response.FieldDetail, len(verrs))
	for i, fe := range verrs {
		details[i] = response.FieldDetail{
			Field:   fe.Field(),
			Code:    strings.ToUpper(fe.Tag()),
			Message: message(fe),
		}
	}
	return details, true
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Use only letters, digits and @/./+/-/_ characters."
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	default:
		return "Invalid value."
	}
}
