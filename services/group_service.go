package services

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/SmartSplit/smart-split-backend/errors"
	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
)

// GroupService manages groups and their member rosters, including the
// placeholder members that exist only as a name inside one group.
type GroupService struct {
	groups store.GroupStore
}

func NewGroupService(groups store.GroupStore) *GroupService {
	return &GroupService{groups: groups}
}

// CreateGroup creates a group and enrolls the creator as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *types.CreateGroupRequest, creatorID, creatorName string) (*types.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.ValidationFailed("Group name is required", "")
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	group := &types.Group{
		Name:        name,
		Description: req.Description,
		Currency:    currency,
		CreatedBy:   creatorID,
	}
	id, err := s.groups.CreateGroup(ctx, group, creatorName)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	group.ID = id
	return group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*types.Group, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.GroupNotFound(groupID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return group, nil
}

func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]types.Group, error) {
	groups, err := s.groups.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return groups, nil
}

// AddMember adds either a registered user or, when no user ID is given, a
// placeholder member known by display name only.
func (s *GroupService) AddMember(ctx context.Context, groupID string, req *types.AddMemberRequest) (*types.GroupMember, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, apperrors.ValidationFailed("Member display name is required", "")
	}

	member := &types.GroupMember{
		GroupID:       groupID,
		DisplayName:   displayName,
		IsPlaceholder: req.UserID == "",
	}
	if req.UserID != "" {
		userID := req.UserID
		member.UserID = &userID
	}

	id, err := s.groups.AddMember(ctx, member)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperrors.NewConflictError("Member already in group", displayName)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	member.ID = id
	return member, nil
}

func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]types.GroupMember, error) {
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return members, nil
}

// ResolveMember finds a group member by its bookkeeping identifier, which is
// the user UUID for registered members and the membership row UUID for
// placeholders.
func (s *GroupService) ResolveMember(ctx context.Context, groupID, memberID string) (*types.GroupMember, error) {
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	for i := range members {
		if members[i].MemberID() == memberID {
			return &members[i], nil
		}
	}
	return nil, apperrors.NotFound("Group member", memberID)
}

// RequireMember is the authorization gate for group-scoped endpoints: it
// fails unless the user is a registered member of the group.
func (s *GroupService) RequireMember(ctx context.Context, groupID, userID string) error {
	ok, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if !ok {
		return apperrors.GroupAccessDenied(userID, groupID)
	}
	return nil
}
