package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// GroupService manages groups and their memberships.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// Create creates a new group. The creator becomes the owner; any additional
// member IDs join with the member role.
func (s *GroupService) Create(ctx context.Context, creatorID, name, currency string, memberIDs []string) (*models.Group, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter ISO 4217 code, got %q", ErrInvalidInput, currency)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}

	members := []models.Member{{UserID: creatorID, Role: models.RoleOwner}}
	for _, id := range memberIDs {
		if id == creatorID {
			continue
		}
		members = append(members, models.Member{UserID: id, Role: models.RoleMember})
	}

	group := &models.Group{
		Name:      name,
		Currency:  currency,
		Members:   members,
		CreatedBy: creatorID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID, "currency", group.Currency, "members", len(group.Members))
	return group, nil
}

// Get retrieves a group for one of its members.
func (s *GroupService) Get(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, groupID)
	}
	return group, nil
}

// ListForUser retrieves every group the user belongs to.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// AddMembers adds users to a group. Only owners and admins may manage
// membership.
func (s *GroupService) AddMembers(ctx context.Context, actorID, groupID string, memberIDs []string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.MemberRole(actorID).CanManage() {
		return nil, fmt.Errorf("%w: user %s may not manage members of group %s", ErrForbidden, actorID, groupID)
	}

	members := make([]models.Member, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == "" {
			return nil, fmt.Errorf("%w: member user id required", ErrInvalidInput)
		}
		members = append(members, models.Member{UserID: id, Role: models.RoleMember})
	}
	if err := s.store.AddGroupMembers(ctx, groupID, members); err != nil {
		return nil, err
	}

	slog.Info("group members added", "group_id", groupID, "added", len(members))
	return s.store.GetGroup(ctx, groupID)
}

// Delete removes a group and all its history. Owner only.
func (s *GroupService) Delete(ctx context.Context, actorID, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.MemberRole(actorID) != models.RoleOwner {
		return fmt.Errorf("%w: only the owner may delete group %s", ErrForbidden, groupID)
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", groupID)
	return nil
}
