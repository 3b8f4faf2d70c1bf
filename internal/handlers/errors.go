package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chantierly/visadoc/internal/services"
	"github.com/chantierly/visadoc/pkg/response"
)

// serviceError maps service sentinels onto the HTTP error contract:
// membership and role failures are 403, missing rows 404, state conflicts
// 409, missing required input 422. Anything unrecognized is a 500.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAMember),
		errors.Is(err, services.ErrDenied),
		errors.Is(err, services.ErrRoleMismatch):
		response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrConcurrentModification),
		errors.Is(err, services.ErrSoleOwnerProtected),
		errors.Is(err, services.ErrDuplicatePendingInvitation),
		errors.Is(err, services.ErrInvitationNotPending),
		errors.Is(err, services.ErrAlreadyMember):
		response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrCommentRequired),
		errors.Is(err, services.ErrNoRecipients):
		response.Unprocessable(c, err.Error())
	case errors.Is(err, services.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// paramID parses a uint path parameter; a second return of false means the
// error response was already written.
func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(n), true
}
