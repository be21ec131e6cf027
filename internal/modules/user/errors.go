package user

import "devplan/internal/pkg/apperr"

var (
	ErrEmailTaken       = apperr.Conflict("email already registered")
	ErrRoleAssignment   = apperr.Forbidden("only administrators can assign a role or a manager")
	ErrUnknownRole      = apperr.BadRequest("role must be one of USER, MANAGER, ADMIN")
	ErrInvalidManager   = apperr.BadRequest("manager must be an existing MANAGER or ADMIN")
	ErrUserNotFound     = apperr.NotFound("user not found")
	ErrSelfDeactivation = apperr.BadRequest("administrators cannot deactivate themselves")
)
