package ypt

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"yptstats/backend/models"
)

const (
	groupCategoryID    = 84
	placeholderInvite  = "link"
	endpointMakeGroup  = "group/make"
	endpointDelete     = "group/delete"
	endpointGroups     = "group/groups"
	endpointMembers    = "logs/group/members"
	endpointInviteEdit = "group/info/edit"
)

type CreateGroupRequest struct {
	Title          string `json:"title"`
	Notice         string `json:"notice"`
	GoalTime       int    `json:"goalTime"`
	Password       string `json:"password"`
	MaxMemberCount int    `json:"maxMemberCount"`
}

type createGroupBody struct {
	CreateGroupRequest
	CategoryID int    `json:"categoryId"`
	InviteLink string `json:"inviteLink"`
	New        bool   `json:"new"`
}

// CreateGroup creates a group owned by the bot and returns its id.
func (c *Client) CreateGroup(ctx context.Context, opts CreateGroupRequest) (int64, error) {
	var resp createdGroupResponse
	err := c.do(ctx, request{
		endpoint: endpointMakeGroup,
		method:   http.MethodPost,
		url:      c.baseURL + "/" + endpointMakeGroup,
		body: createGroupBody{
			CreateGroupRequest: opts,
			CategoryID:         groupCategoryID,
			InviteLink:         placeholderInvite,
			New:                true,
		},
		auth: true,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return *resp.Group.ID, nil
}

func (c *Client) DeleteGroup(ctx context.Context, groupID int64) error {
	return c.do(ctx, request{
		endpoint: endpointDelete,
		method:   http.MethodPost,
		url:      c.baseURL + "/" + endpointDelete,
		body:     map[string]int64{"id": groupID},
		auth:     true,
	}, nil)
}

// ListGroupMembers returns the members of a group, the bot included.
func (c *Client) ListGroupMembers(ctx context.Context, groupID int64) ([]models.Member, error) {
	q := url.Values{}
	q.Set("groupID", strconv.FormatInt(groupID, 10))

	var resp groupMembersResponse
	// This endpoint doesn't require any authentication.
	err := c.do(ctx, request{
		endpoint: endpointMembers,
		method:   http.MethodGet,
		url:      c.baseURL + "/" + endpointMembers + "?" + q.Encode(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.members(), nil
}

// ListGroups returns the ids of every group the bot belongs to.
func (c *Client) ListGroups(ctx context.Context) ([]int64, error) {
	var resp groupsResponse
	err := c.do(ctx, request{
		endpoint: endpointGroups,
		method:   http.MethodGet,
		url:      c.baseURL + "/" + endpointGroups,
		auth:     true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.ids(), nil
}

// SetInviteInfo publishes link on the group's invite page.
func (c *Client) SetInviteInfo(ctx context.Context, groupID int64, link string) error {
	return c.do(ctx, request{
		endpoint: endpointInviteEdit,
		method:   http.MethodPost,
		url:      c.baseURL + "/" + endpointInviteEdit,
		body: struct {
			ID         int64  `json:"id"`
			InviteLink string `json:"inviteLink"`
		}{groupID, link},
		auth: true,
	}, nil)
}
