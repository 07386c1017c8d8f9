package expense

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/pkg/response"
)

// CreateExpenseRequest represents the request to record an expense.
// Group may be omitted when the group comes from the URL.
type CreateExpenseRequest struct {
	GroupID     *int64          `json:"group,omitempty" example:"1"`
	Description string          `json:"description" example:"Dinner"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
	PaidBy      *int64          `json:"paid_by,omitempty" example:"2"`
}

// UpdateExpenseRequest represents a partial rewrite of an expense
type UpdateExpenseRequest struct {
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	PaidBy      *int64           `json:"paid_by,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID             int64  `json:"id"`
	GroupID        int64  `json:"group"`
	GroupName      string `json:"group_name,omitempty"`
	Description    string `json:"description"`
	Amount         string `json:"amount" example:"50.00"`
	PaidBy         int64  `json:"paid_by"`
	PaidByUsername string `json:"paid_by_username,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:             e.ID,
		GroupID:        e.GroupID,
		GroupName:      e.GroupName,
		Description:    e.Description,
		Amount:         e.Amount.StringFixed(AmountDecimalPlaces),
		PaidBy:         e.PaidBy,
		PaidByUsername: e.PaidByUsername,
		CreatedAt:      e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ToFieldDetails converts a validation error to response details
func (e *ValidationError) ToFieldDetails() []response.FieldDetail {
	details := make([]response.FieldDetail, len(e.Fields))
	for i, f := range e.Fields {
		details[i] = response.FieldDetail{
			Field:   f.Field,
			Code:    string(f.Kind),
			Message: f.Message,
		}
	}
	return details
}
