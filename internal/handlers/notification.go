package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chantierly/visadoc/internal/middleware"
	"github.com/chantierly/visadoc/internal/services"
	"github.com/chantierly/visadoc/pkg/response"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications
// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var req services.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.notifications.List(middleware.GetUserID(c), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, resp)
}

// UnreadCount returns the caller's unread notification count
// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

// MarkRead marks one notification as read
// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(middleware.GetUserID(c), id); err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "marked as read"})
}

// MarkAllRead marks all the caller's notifications as read
// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(middleware.GetUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	response.Success(c, gin.H{"marked": n})
}
