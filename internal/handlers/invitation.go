package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chantierly/visadoc/internal/middleware"
	"github.com/chantierly/visadoc/internal/services"
	"github.com/chantierly/visadoc/pkg/response"
)

type InvitationHandler struct {
	invitations *services.InvitationService
	users       *services.UserService
}

func NewInvitationHandler(db *gorm.DB, access *services.AccessService, notifier *services.NotificationService) *InvitationHandler {
	return &InvitationHandler{
		invitations: services.NewInvitationService(db, access, notifier),
		users:       services.NewUserService(db),
	}
}

// Invite creates a pending invitation
// POST /api/projects/:id/invitations
func (h *InvitationHandler) Invite(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invitation, err := h.invitations.Invite(projectID, req.Email, req.Role, middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Created(c, invitation)
}

// List returns a project's invitations
// GET /api/projects/:id/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	invitations, err := h.invitations.List(middleware.GetUserID(c), projectID)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, invitations)
}

// ListMine returns the caller's pending invitations
// GET /api/invitations
func (h *InvitationHandler) ListMine(c *gin.Context) {
	user, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	invitations, err := h.invitations.ListForEmail(user.Email)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, invitations)
}

// Respond records the caller's accept or refuse decision
// POST /api/invitations/:id/respond
func (h *InvitationHandler) Respond(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required,oneof=accept refuse"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invitation, err := h.invitations.Respond(id, req.Decision, middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, invitation)
}

// Cancel withdraws a pending invitation
// DELETE /api/invitations/:id
func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invitations.Cancel(id, middleware.GetUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invitation cancelled"})
}
