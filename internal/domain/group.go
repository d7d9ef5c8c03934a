package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/habitquest/backend/internal/common"
	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/enum"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const maxMessageLength = 2000

var groupManagerRoles = []entity.GroupRole{entity.RoleOwner, entity.RoleAdmin}

type GroupDomain interface {
	Create(context.Context, *model.CreateGroupRequest) (*model.CreateGroupResponse, error)
	Get(context.Context, *model.GetGroupRequest) (*model.GetGroupResponse, error)
	GetPublicList(context.Context, *model.GetPublicGroupsRequest) (*model.GetPublicGroupsResponse, error)
	GetMembers(context.Context, *model.GetGroupMembersRequest) (*model.GetGroupMembersResponse, error)
	Join(context.Context, *model.JoinGroupRequest) (*model.JoinGroupResponse, error)
	Approve(context.Context, *model.ApproveMemberRequest) (*model.ApproveMemberResponse, error)
	Reject(context.Context, *model.RejectMemberRequest) (*model.RejectMemberResponse, error)
	ChangeRole(context.Context, *model.ChangeMemberRoleRequest) (*model.ChangeMemberRoleResponse, error)
	Leave(context.Context, *model.LeaveGroupRequest) (*model.LeaveGroupResponse, error)
	Remove(context.Context, *model.RemoveMemberRequest) (*model.RemoveMemberResponse, error)
	PostMessage(context.Context, *model.PostGroupMessageRequest) (*model.PostGroupMessageResponse, error)
	GetMessages(context.Context, *model.GetGroupMessagesRequest) (*model.GetGroupMessagesResponse, error)
}

type groupDomain struct {
	groupRepo        repository.GroupRepository
	groupMemberRepo  repository.GroupMemberRepository
	groupMessageRepo repository.GroupMessageRepository
	roleVerifier     *common.GroupRoleVerifier
	clock            clock
}

func NewGroupDomain(
	groupRepo repository.GroupRepository,
	groupMemberRepo repository.GroupMemberRepository,
	groupMessageRepo repository.GroupMessageRepository,
) GroupDomain {
	return &groupDomain{
		groupRepo:        groupRepo,
		groupMemberRepo:  groupMemberRepo,
		groupMessageRepo: groupMessageRepo,
		roleVerifier:     common.NewGroupRoleVerifier(groupMemberRepo),
		clock:            time.Now,
	}
}

// Create creates a group whose creator is its active owner.
func (d *groupDomain) Create(
	ctx context.Context, req *model.CreateGroupRequest,
) (*model.CreateGroupResponse, error) {
	if err := checkTitle(req.Name); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	group := &entity.Group{
		Base:        entity.Base{ID: uuid.NewString()},
		CreatedBy:   userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}

	owner := &entity.GroupMember{
		ID:      uuid.NewString(),
		UserID:  userID,
		GroupID: group.ID,
		Role:    entity.RoleOwner,
		Status:  entity.MembershipActive,
		OwnerOf: sql.NullString{Valid: true, String: group.ID},
	}

	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		if err := d.groupRepo.Create(ctx, group); err != nil {
			return err
		}

		return d.groupMemberRepo.Create(ctx, owner)
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found group", "create group")
	}

	return &model.CreateGroupResponse{
		Group:      model.ConvertGroup(group, 1),
		Membership: model.ConvertGroupMember(owner),
	}, nil
}

// Get returns a group. A private group is only visible to its active members.
func (d *groupDomain) Get(ctx context.Context, req *model.GetGroupRequest) (*model.GetGroupResponse, error) {
	group, err := d.groupRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found group")
		}

		xcontext.Logger(ctx).Errorf("Cannot get group: %v", err)
		return nil, errorx.Unknown
	}

	if !group.IsPublic {
		if _, err := d.roleVerifier.Verify(ctx, group.ID); err != nil {
			return nil, err
		}
	}

	members, err := d.groupMemberRepo.CountOthers(ctx, group.ID, "")
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count members: %v", err)
		return nil, errorx.Unknown
	}

	return (*model.GetGroupResponse)(ptr(model.ConvertGroup(group, members))), nil
}

func (d *groupDomain) GetPublicList(
	ctx context.Context, req *model.GetPublicGroupsRequest,
) (*model.GetPublicGroupsResponse, error) {
	offset, limit, err := checkPagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	groups, err := d.groupRepo.GetPublicList(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get public groups: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Group{}
	for i := range groups {
		result = append(result, model.ConvertGroup(&groups[i].Group, groups[i].Members))
	}

	return &model.GetPublicGroupsResponse{Groups: result}, nil
}

// GetMembers returns the roster of a group to its active members. Owners and
// admins also see pending requests.
func (d *groupDomain) GetMembers(
	ctx context.Context, req *model.GetGroupMembersRequest,
) (*model.GetGroupMembersResponse, error) {
	if _, err := d.getGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}

	actor, err := d.roleVerifier.Verify(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	statuses := []entity.MembershipStatus{entity.MembershipActive}
	if slices.Contains(groupManagerRoles, actor.Role) {
		statuses = append(statuses, entity.MembershipPending)
	}

	members, err := d.groupMemberRepo.GetListByGroupID(ctx, req.GroupID, statuses...)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get members: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.GroupMember{}
	for i := range members {
		result = append(result, model.ConvertGroupMember(&members[i]))
	}

	return &model.GetGroupMembersResponse{Members: result}, nil
}

// Join makes the request user an active member of a public group, or a pending
// member of a private one.
func (d *groupDomain) Join(ctx context.Context, req *model.JoinGroupRequest) (*model.JoinGroupResponse, error) {
	member := &entity.GroupMember{
		ID:      uuid.NewString(),
		UserID:  xcontext.RequestUserID(ctx),
		GroupID: req.GroupID,
		Role:    entity.RoleMember,
	}

	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		group, err := d.groupRepo.GetByIDForUpdate(ctx, req.GroupID)
		if err != nil {
			return err
		}

		member.Status = entity.MembershipPending
		if group.IsPublic {
			member.Status = entity.MembershipActive
		}

		if err := d.groupMemberRepo.Create(ctx, member); err != nil {
			if repository.IsDuplicated(err) {
				return errorx.New(errorx.AlreadyExists, "User already joined the group")
			}

			return err
		}

		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found group", "join group")
	}

	common.PromCounters[common.ParticipationTotal].WithLabelValues("group", "join").Inc()
	return (*model.JoinGroupResponse)(ptr(model.ConvertGroupMember(member))), nil
}

func (d *groupDomain) Approve(
	ctx context.Context, req *model.ApproveMemberRequest,
) (*model.ApproveMemberResponse, error) {
	var target *entity.GroupMember
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		target, err = d.getPendingTarget(ctx, req.ID)
		if err != nil {
			return err
		}

		if err := d.groupMemberRepo.Activate(ctx, target.ID); err != nil {
			return err
		}

		target.Status = entity.MembershipActive
		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found membership", "approve member")
	}

	return (*model.ApproveMemberResponse)(ptr(model.ConvertGroupMember(target))), nil
}

func (d *groupDomain) Reject(
	ctx context.Context, req *model.RejectMemberRequest,
) (*model.RejectMemberResponse, error) {
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		target, err := d.getPendingTarget(ctx, req.ID)
		if err != nil {
			return err
		}

		return d.groupMemberRepo.DeleteByID(ctx, target.ID)
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found membership", "reject member")
	}

	return &model.RejectMemberResponse{}, nil
}

// ChangeRole moves an active non-owner member between ADMIN and MEMBER. Only
// the owner may do it and ownership never moves.
func (d *groupDomain) ChangeRole(
	ctx context.Context, req *model.ChangeMemberRoleRequest,
) (*model.ChangeMemberRoleResponse, error) {
	role, err := enum.ToEnum[entity.GroupRole](req.Role)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid role")
	}

	if role == entity.RoleOwner {
		return nil, errorx.New(errorx.InvalidState, "Ownership cannot be transferred")
	}

	var target *entity.GroupMember
	err = xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		target, err = d.groupMemberRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		if _, err := d.roleVerifier.Verify(ctx, target.GroupID, entity.RoleOwner); err != nil {
			return err
		}

		if target.Role == entity.RoleOwner {
			return errorx.New(errorx.InvalidState, "The role of the owner cannot be changed")
		}

		if target.Status != entity.MembershipActive {
			return errorx.New(errorx.InvalidState, "The membership is not active")
		}

		if target.Role == role {
			return nil
		}

		if err := d.groupMemberRepo.UpdateRole(ctx, target.ID, target.Role, role); err != nil {
			return err
		}

		target.Role = role
		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found membership", "change member role")
	}

	return (*model.ChangeMemberRoleResponse)(ptr(model.ConvertGroupMember(target))), nil
}

// Leave deletes the membership of the request user. The owner can only leave a
// group without other active members, and the group is dissolved with it:
// its pending requests and messages go away and nobody can join it anymore.
func (d *groupDomain) Leave(ctx context.Context, req *model.LeaveGroupRequest) (*model.LeaveGroupResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	dissolved := false
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := d.groupRepo.GetByIDForUpdate(ctx, req.GroupID); err != nil {
			return err
		}

		member, err := d.groupMemberRepo.GetForUpdate(ctx, userID, req.GroupID)
		if err != nil {
			return err
		}

		if member.Role != entity.RoleOwner {
			return d.groupMemberRepo.DeleteByID(ctx, member.ID)
		}

		others, err := d.groupMemberRepo.CountOthers(ctx, req.GroupID, userID)
		if err != nil {
			return err
		}

		if others > 0 {
			return errorx.New(errorx.InvalidState, "The owner cannot leave while other members remain")
		}

		if err := d.groupMessageRepo.DeleteByGroupID(ctx, req.GroupID); err != nil {
			return err
		}

		if err := d.groupMemberRepo.DeleteByGroupID(ctx, req.GroupID); err != nil {
			return err
		}

		dissolved = true
		return d.groupRepo.DeleteByID(ctx, req.GroupID)
	})
	if err != nil {
		return nil, storageError(ctx, err, "User is not a member of the group", "leave group")
	}

	common.PromCounters[common.ParticipationTotal].WithLabelValues("group", "leave").Inc()
	if dissolved {
		common.PromCounters[common.ParticipationTotal].WithLabelValues("group", "dissolve").Inc()
	}

	return &model.LeaveGroupResponse{}, nil
}

// Remove deletes the membership of another user. The actor must be an owner or
// an admin with a strictly higher role than the target.
func (d *groupDomain) Remove(
	ctx context.Context, req *model.RemoveMemberRequest,
) (*model.RemoveMemberResponse, error) {
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		target, err := d.groupMemberRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		actor, err := d.roleVerifier.Verify(ctx, target.GroupID, groupManagerRoles...)
		if err != nil {
			return err
		}

		if actor.ID == target.ID {
			return errorx.New(errorx.InvalidState, "Use leave to remove yourself from the group")
		}

		if target.Role.Rank() >= actor.Role.Rank() {
			return errorx.New(errorx.PermissionDenied, "Cannot remove a member of equal or higher role")
		}

		return d.groupMemberRepo.DeleteByID(ctx, target.ID)
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found membership", "remove member")
	}

	common.PromCounters[common.ParticipationTotal].WithLabelValues("group", "remove").Inc()
	return &model.RemoveMemberResponse{}, nil
}

// PostMessage appends a message to the group board. Only active members may
// post.
func (d *groupDomain) PostMessage(
	ctx context.Context, req *model.PostGroupMessageRequest,
) (*model.PostGroupMessageResponse, error) {
	if req.Content == "" {
		return nil, errorx.New(errorx.BadRequest, "Content must not be empty")
	}

	if utf8.RuneCountInString(req.Content) > maxMessageLength {
		return nil, errorx.New(errorx.BadRequest, "Content too long (at most %d characters)", maxMessageLength)
	}

	if _, err := d.getGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}

	if _, err := d.roleVerifier.Verify(ctx, req.GroupID); err != nil {
		return nil, err
	}

	message := &entity.GroupMessage{
		ID:        uuid.NewString(),
		CreatedAt: d.clock.now(),
		GroupID:   req.GroupID,
		UserID:    xcontext.RequestUserID(ctx),
		Content:   req.Content,
	}

	if err := d.groupMessageRepo.Create(ctx, message); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create group message: %v", err)
		return nil, errorx.Unknown
	}

	return (*model.PostGroupMessageResponse)(ptr(model.ConvertGroupMessage(message))), nil
}

// GetMessages returns the board of a group, newest first, to its active
// members.
func (d *groupDomain) GetMessages(
	ctx context.Context, req *model.GetGroupMessagesRequest,
) (*model.GetGroupMessagesResponse, error) {
	offset, limit, err := checkPagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	if _, err := d.getGroup(ctx, req.GroupID); err != nil {
		return nil, err
	}

	if _, err := d.roleVerifier.Verify(ctx, req.GroupID); err != nil {
		return nil, err
	}

	messages, err := d.groupMessageRepo.GetListByGroupID(ctx, req.GroupID, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get group messages: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.GroupMessage{}
	for i := range messages {
		result = append(result, model.ConvertGroupMessage(&messages[i]))
	}

	return &model.GetGroupMessagesResponse{Messages: result}, nil
}

// getPendingTarget loads a pending membership the request user may approve or
// reject.
func (d *groupDomain) getPendingTarget(ctx context.Context, id string) (*entity.GroupMember, error) {
	target, err := d.groupMemberRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := d.roleVerifier.Verify(ctx, target.GroupID, groupManagerRoles...); err != nil {
		return nil, err
	}

	if target.Status != entity.MembershipPending {
		return nil, errorx.New(errorx.InvalidState, "The membership is not pending")
	}

	return target, nil
}

func (d *groupDomain) getGroup(ctx context.Context, id string) (*entity.Group, error) {
	group, err := d.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found group")
		}

		xcontext.Logger(ctx).Errorf("Cannot get group: %v", err)
		return nil, errorx.Unknown
	}

	return group, nil
}
