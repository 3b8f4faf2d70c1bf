package services

import "errors"

// Typed failures returned by the core services. Handlers translate these to
// HTTP responses; none of them should crash the process.
var (
	// ErrNotAMember means the caller has no membership row on the project.
	// Callers must treat it as a denial for every access level.
	ErrNotAMember = errors.New("caller is not a member of this project")

	// ErrDenied means the caller's access level is insufficient.
	ErrDenied = errors.New("insufficient access level")

	// ErrInvalidTransition means the (status, action) pair is not in the
	// workflow transition table.
	ErrInvalidTransition = errors.New("invalid document status transition")

	// ErrRoleMismatch means the caller's global role is not among the
	// document's recipient roles for a review action.
	ErrRoleMismatch = errors.New("global role is not a recipient of this document")

	// ErrCommentRequired means observations or rejection was attempted
	// without a comment.
	ErrCommentRequired = errors.New("a comment is required for this action")

	// ErrNoRecipients means a draft was submitted without any recipient
	// role set.
	ErrNoRecipients = errors.New("document has no recipient roles")

	// ErrConcurrentModification means the optimistic version check failed:
	// the row changed between read and write. The caller should re-read and
	// retry.
	ErrConcurrentModification = errors.New("document was modified concurrently, retry")

	// ErrDuplicatePendingInvitation means a pending invitation already
	// exists for the same (project, email) pair.
	ErrDuplicatePendingInvitation = errors.New("a pending invitation already exists for this email")

	// ErrInvitationNotPending means the invitation already left the pending
	// state.
	ErrInvitationNotPending = errors.New("invitation is not pending")

	// ErrNotFound means the project, document, member or invitation does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrSoleOwnerProtected means the operation would remove or demote the
	// only owner of a project.
	ErrSoleOwnerProtected = errors.New("the sole project owner cannot be removed or demoted")

	// ErrInvalidRole means the supplied role is not valid for the operation.
	ErrInvalidRole = errors.New("invalid role")

	// ErrAlreadyMember means the user already holds a membership row on the
	// project.
	ErrAlreadyMember = errors.New("user is already a member of this project")
)
