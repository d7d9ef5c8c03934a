package common

import (
	"context"
	"errors"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type GroupRoleVerifier struct {
	groupMemberRepo repository.GroupMemberRepository
}

func NewGroupRoleVerifier(groupMemberRepo repository.GroupMemberRepository) *GroupRoleVerifier {
	return &GroupRoleVerifier{groupMemberRepo: groupMemberRepo}
}

// Verify returns the active membership of the request user in the group if
// it holds one of the required roles. Otherwise it returns a PermissionDenied
// error.
func (verifier *GroupRoleVerifier) Verify(
	ctx context.Context,
	groupID string,
	requiredRoles ...entity.GroupRole,
) (*entity.GroupMember, error) {
	userID := xcontext.RequestUserID(ctx)
	member, err := verifier.groupMemberRepo.Get(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PermissionDenied, "User is not a member of the group")
		}

		xcontext.Logger(ctx).Errorf("Cannot get the membership: %v", err)
		return nil, errorx.Unknown
	}

	if member.Status != entity.MembershipActive {
		return nil, errorx.New(errorx.PermissionDenied, "The membership is not active")
	}

	if len(requiredRoles) > 0 && !slices.Contains(requiredRoles, member.Role) {
		return nil, errorx.New(errorx.PermissionDenied, "User role does not have permission")
	}

	return member, nil
}
