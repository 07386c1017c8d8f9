package expense

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fkhayef/groupledger/internal/metrics"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrNotGroupMember  = errors.New("only members of the group can change its expenses")
)

// Store persists expenses. Mutations run inside one transaction that holds
// the group's row lock, so the roster handed to the callbacks stays current
// until commit.
type Store interface {
	// Create locks the group, builds the expense from its roster and inserts it
	Create(ctx context.Context, groupID int64, build func(*Roster) (*Expense, error)) (*Expense, error)
	// GetByID returns nil, nil when the expense does not exist
	GetByID(ctx context.Context, id int64) (*Expense, error)
	List(ctx context.Context, filter ListFilter) ([]*Expense, int, error)
	Update(ctx context.Context, id int64, apply func(current *Expense, roster *Roster) (*Expense, error)) (*Expense, error)
	Delete(ctx context.Context, id int64, authorize func(current *Expense, roster *Roster) error) error
}

// Listener is told about every stored expense after commit
type Listener interface {
	ExpenseRecorded(ctx context.Context, e *Expense, memberIDs []int64) error
}

// Service handles expense business logic
type Service struct {
	store     Store
	listeners []Listener
}

// NewService creates a new expense service with dependencies injected
func NewService(store Store, listeners ...Listener) *Service {
	return &Service{
		store:     store,
		listeners: listeners,
	}
}

// RecordExpense validates and stores an expense on behalf of actorID (0 when anonymous)
func (s *Service) RecordExpense(ctx context.Context, actorID int64, req *CreateExpenseRequest) (*Expense, error) {
	in := Input{
		PaidBy:      req.PaidBy,
		Amount:      req.Amount,
		Description: req.Description,
	}

	if req.GroupID == nil {
		_, err := Validate(in, actorID)
		return nil, s.observe(err)
	}

	var members []int64
	e, err := s.store.Create(ctx, *req.GroupID, func(roster *Roster) (*Expense, error) {
		members = roster.MemberIDs()
		in.Group = roster
		return Validate(in, actorID)
	})
	if err != nil {
		return nil, s.observe(err)
	}

	metrics.ExpensesRecorded.Inc()
	slog.InfoContext(ctx, "Expense recorded",
		"expense_id", e.ID,
		"group_id", e.GroupID,
		"paid_by", e.PaidBy,
		"amount", e.Amount.String())

	for _, l := range s.listeners {
		if err := l.ExpenseRecorded(ctx, e, members); err != nil {
			slog.WarnContext(ctx, "Expense listener failed", "expense_id", e.ID, "error", err)
		}
	}

	return e, nil
}

// GetExpenseByID retrieves an expense
func (s *Service) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// ListExpenses retrieves a page of expenses, newest first
func (s *Service) ListExpenses(ctx context.Context, groupID, paidBy *int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return s.store.List(ctx, ListFilter{
		GroupID: groupID,
		PaidBy:  paidBy,
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
}

// UpdateExpense applies a partial rewrite and re-validates the merged expense.
// Only current members of the expense's group may do so.
func (s *Service) UpdateExpense(ctx context.Context, id, actorID int64, req *UpdateExpenseRequest) (*Expense, error) {
	e, err := s.store.Update(ctx, id, func(current *Expense, roster *Roster) (*Expense, error) {
		if !roster.Has(actorID) {
			return nil, ErrNotGroupMember
		}

		paidBy := current.PaidBy
		in := Input{
			Group:       roster,
			PaidBy:      &paidBy,
			Amount:      current.Amount,
			Description: current.Description,
		}
		if req.PaidBy != nil {
			in.PaidBy = req.PaidBy
		}
		if req.Amount != nil {
			in.Amount = *req.Amount
		}
		if req.Description != nil {
			in.Description = *req.Description
		}

		updated, err := Validate(in, actorID)
		if err != nil {
			return nil, err
		}
		updated.ID = current.ID
		updated.CreatedAt = current.CreatedAt
		return updated, nil
	})
	if err != nil {
		return nil, s.observe(err)
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", e.ID, "group_id", e.GroupID, "actor", actorID)
	return e, nil
}

// DeleteExpense removes an expense; only current members of its group may do so
func (s *Service) DeleteExpense(ctx context.Context, id, actorID int64) error {
	err := s.store.Delete(ctx, id, func(current *Expense, roster *Roster) error {
		if !roster.Has(actorID) {
			return ErrNotGroupMember
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "actor", actorID)
	return nil
}

// observe counts validation failures by rule and passes err through
func (s *Service) observe(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			metrics.ValidationFailures.WithLabelValues(string(f.Kind)).Inc()
		}
	}
	return err
}
