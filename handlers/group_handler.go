package handlers

import (
	"net/http"

	"github.com/SmartSplit/smart-split-backend/services"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/gin-gonic/gin"
)

// GroupHandler handles HTTP requests for groups and their member rosters.
type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// CreateGroup handles POST /v1/groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req types.CreateGroupRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), &req, userID, getUserNameFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListGroups handles GET /v1/groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	groups, err := h.groupService.ListGroups(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetGroup handles GET /v1/groups/:id.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	group, err := h.groupService.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// AddMember handles POST /v1/groups/:id/members. A request without a user ID
// adds a placeholder member.
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	var req types.AddMemberRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	member, err := h.groupService.AddMember(c.Request.Context(), groupID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// ListMembers handles GET /v1/groups/:id/members.
func (h *GroupHandler) ListMembers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("id")

	if err := h.groupService.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	members, err := h.groupService.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, members)
}
