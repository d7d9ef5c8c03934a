package model

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type CreateGroupResponse struct {
	Group      Group       `json:"group"`
	Membership GroupMember `json:"membership"`
}

type GetGroupRequest struct {
	ID string `json:"id"`
}

type GetGroupResponse Group

type GetPublicGroupsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetPublicGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type GetGroupMembersRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupMembersResponse struct {
	Members []GroupMember `json:"members"`
}

type JoinGroupRequest struct {
	GroupID string `json:"group_id"`
}

type JoinGroupResponse GroupMember

type ApproveMemberRequest struct {
	ID string `json:"id"`
}

type ApproveMemberResponse GroupMember

type RejectMemberRequest struct {
	ID string `json:"id"`
}

type RejectMemberResponse struct{}

type ChangeMemberRoleRequest struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type ChangeMemberRoleResponse GroupMember

type LeaveGroupRequest struct {
	GroupID string `json:"group_id"`
}

type LeaveGroupResponse struct{}

type RemoveMemberRequest struct {
	ID string `json:"id"`
}

type RemoveMemberResponse struct{}

type PostGroupMessageRequest struct {
	GroupID string `json:"group_id"`
	Content string `json:"content"`
}

type PostGroupMessageResponse GroupMessage

type GetGroupMessagesRequest struct {
	GroupID string `json:"group_id"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetGroupMessagesResponse struct {
	Messages []GroupMessage `json:"messages"`
}
