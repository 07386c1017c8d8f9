package notification

import "time"

// Notification is an inbox entry for one user
type Notification struct {
	ID                int64     `json:"id"`
	RecipientID       int64     `json:"recipient_id"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"`
	RelatedEntityID   *int64    `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Entity types a notification can point at
const (
	EntityExpense = "expense"
)

// Draft is a notification not yet stored
type Draft struct {
	RecipientID int64
	Message     string
	EntityType  string
	EntityID    int64
}
