package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fkhayef/groupledger/internal/expense"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store persists notifications
type Store interface {
	CreateMany(ctx context.Context, drafts []Draft) error
	// GetByID returns nil, nil when the notification does not exist
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, recipientID int64) error
	GetUnreadCount(ctx context.Context, recipientID int64) (int, error)
}

// Service handles notification business logic
type Service struct {
	store Store
}

// NewService creates a new notification service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ExpenseRecorded tells every member except the payer that they now share in an expense
func (s *Service) ExpenseRecorded(ctx context.Context, e *expense.Expense, memberIDs []int64) error {
	payer := e.PaidByUsername
	if payer == "" {
		payer = fmt.Sprintf("User %d", e.PaidBy)
	}
	message := fmt.Sprintf("%s paid %s for %q", payer, e.Amount.StringFixed(2), e.Description)
	if e.GroupName != "" {
		message += " in " + e.GroupName
	}

	drafts := make([]Draft, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == e.PaidBy {
			continue
		}
		drafts = append(drafts, Draft{
			RecipientID: id,
			Message:     message,
			EntityType:  EntityExpense,
			EntityID:    e.ID,
		})
	}

	if err := s.store.CreateMany(ctx, drafts); err != nil {
		return err
	}

	slog.DebugContext(ctx, "Expense notifications created", "expense_id", e.ID, "count", len(drafts))
	return nil
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.store.GetUnreadCount(ctx, userID)
}
