package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fkhayef/groupledger/pkg/validation"
)

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrUserHasExpenses   = errors.New("user has paid for expenses and cannot be deleted")
	ErrForbidden         = errors.New("users can only change their own account")
)

// Store persists users
type Store interface {
	Create(ctx context.Context, username, email string) (*User, error)
	// GetByID returns nil, nil when the user does not exist
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Update(ctx context.Context, id int64, username, email string) (*User, error)
	// Delete fails with ErrUserHasExpenses while any expense names the user as payer
	Delete(ctx context.Context, id int64) error
}

// Service handles user business logic
type Service struct {
	store Store
}

// NewService creates a new user service with store dependency injected
func NewService(store Store) *Service {
	return &Service{store: store}
}

// normalizeEmail trims the address and lowercases it so uniqueness is case-insensitive
func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Create creates a new user
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	clean := CreateUserRequest{
		Username: strings.TrimSpace(req.Username),
		Email:    normalizeEmail(req.Email),
	}
	if err := validation.Struct(&clean); err != nil {
		return nil, err
	}

	user, err := s.store.Create(ctx, clean.Username, clean.Email)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "User created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List retrieves all users with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.List(ctx, perPage, offset)
}

// Update changes a user's own username or email
func (s *Service) Update(ctx context.Context, id, actorID int64, req *UpdateUserRequest) (*User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != id {
		return nil, ErrForbidden
	}

	username, email := existing.Username, existing.Email
	var clean UpdateUserRequest
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
		clean.Username = &username
	}
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		clean.Email = &email
	}
	if err := validation.Struct(&clean); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, id, username, email)
}

// Delete removes a user's own account
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if actorID != id {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "User deleted", "user_id", id)
	return nil
}
