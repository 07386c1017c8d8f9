package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RoutingKeyExpenseRecorded is the routing key for newly stored expenses
const RoutingKeyExpenseRecorded = "expense.recorded"

// ExpenseRecordedMessage announces a stored expense to downstream consumers.
// Members lists the group roster the expense was validated against.
type ExpenseRecordedMessage struct {
	ExpenseID   int64           `json:"expense_id"`
	GroupID     int64           `json:"group_id"`
	PaidBy      int64           `json:"paid_by"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Members     []int64         `json:"members"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes a message published by this service
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
