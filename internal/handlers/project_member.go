package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chantierly/visadoc/internal/middleware"
	"github.com/chantierly/visadoc/internal/services"
	"github.com/chantierly/visadoc/pkg/response"
)

type ProjectMemberHandler struct {
	access *services.AccessService
}

func NewProjectMemberHandler(access *services.AccessService) *ProjectMemberHandler {
	return &ProjectMemberHandler{access: access}
}

// List returns a project's members
// GET /api/projects/:id/members
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	members, err := h.access.ListMembers(middleware.GetUserID(c), projectID)
	if err != nil {
		serviceError(c, err)
		return
	}

	for i := range members {
		if members[i].User != nil {
			members[i].User.Password = ""
		}
	}
	response.Success(c, members)
}

// Add adds a user to a project
// POST /api/projects/:id/members
func (h *ProjectMemberHandler) Add(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.access.AddMember(middleware.GetUserID(c), projectID, req.UserID, req.Role)
	if err != nil {
		serviceError(c, err)
		return
	}

	if member.User != nil {
		member.User.Password = ""
	}
	response.Created(c, member)
}

// UpdateRole changes a member's project role
// PUT /api/projects/:id/members/:userId
func (h *ProjectMemberHandler) UpdateRole(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.access.UpdateMemberRole(middleware.GetUserID(c), projectID, userID, req.Role)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, member)
}

// Remove removes a member from a project
// DELETE /api/projects/:id/members/:userId
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	if err := h.access.RemoveMember(middleware.GetUserID(c), projectID, userID); err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}
