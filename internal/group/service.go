package group

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fkhayef/groupledger/pkg/validation"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrMemberHasExpenses   = errors.New("member has paid for expenses in this group")
	ErrNotAuthorized       = errors.New("only members can change this group")
)

// Store persists groups and memberships. AddMember and RemoveMember bump
// the group's version under its row lock; RemoveMember refuses to drop a
// member who paid for any of the group's expenses.
type Store interface {
	Create(ctx context.Context, name string, memberIDs []int64) (*Group, error)
	// GetByID returns nil, nil when the group does not exist
	GetByID(ctx context.Context, id int64) (*Group, error)
	List(ctx context.Context, memberID *int64, limit, offset int) ([]*Group, int, error)
	// Update returns nil, nil when the group does not exist
	Update(ctx context.Context, id int64, name string) (*Group, error)
	Delete(ctx context.Context, id int64) error
	GetMembers(ctx context.Context, groupID int64) ([]*Member, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	AddMember(ctx context.Context, groupID, userID int64) (*Member, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
}

// Service handles group business logic
type Service struct {
	store Store
}

// NewService creates a new group service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create creates a new group with the creator as its first member
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	clean := CreateGroupRequest{Name: strings.TrimSpace(req.Name), Members: req.Members}
	if err := validation.Struct(&clean); err != nil {
		return nil, err
	}

	memberIDs := append([]int64{creatorID}, clean.Members...)
	group, err := s.store.Create(ctx, clean.Name, memberIDs)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Group created", "group_id", group.ID, "creator", creatorID, "members", group.MemberCount)
	return group, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*Member, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.store.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// List retrieves groups, optionally only those memberID belongs to
func (s *Service) List(ctx context.Context, memberID *int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.List(ctx, memberID, perPage, offset)
}

// authorize checks that the group exists and actorID belongs to it
func (s *Service) authorize(ctx context.Context, groupID, actorID int64) error {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return err
	}
	ok, err := s.store.IsMember(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// Update renames a group
func (s *Service) Update(ctx context.Context, id, actorID int64, req *UpdateGroupRequest) (*Group, error) {
	if err := s.authorize(ctx, id, actorID); err != nil {
		return nil, err
	}
	if req.Name == nil {
		return s.GetByID(ctx, id)
	}

	name := strings.TrimSpace(*req.Name)
	if err := validation.Struct(&UpdateGroupRequest{Name: &name}); err != nil {
		return nil, err
	}

	group, err := s.store.Update(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Delete removes a group together with its expenses
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.authorize(ctx, id, actorID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Group deleted", "group_id", id, "actor", actorID)
	return nil
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, groupID, actorID int64, req *AddMemberRequest) (*Member, error) {
	if err := s.authorize(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	if req.UserID <= 0 {
		return nil, ErrUserNotFound
	}

	return s.store.AddMember(ctx, groupID, req.UserID)
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.GetMembers(ctx, groupID)
}

// RemoveMember removes a user from a group. Members may remove themselves or
// others, but never someone who paid for one of the group's expenses.
func (s *Service) RemoveMember(ctx context.Context, groupID, actorID, userID int64) error {
	if err := s.authorize(ctx, groupID, actorID); err != nil {
		return err
	}
	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Member removed", "group_id", groupID, "user_id", userID, "actor", actorID)
	return nil
}
