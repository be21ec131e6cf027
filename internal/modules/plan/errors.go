package plan

import "devplan/internal/pkg/apperr"

var (
	ErrInvalidPeriod = apperr.BadRequest("periodTo must be after periodFrom")
	ErrPlanNotFound  = apperr.NotFound("plan not found")
	ErrGoalNotFound  = apperr.NotFound("goal not found")
	ErrPlanNotDraft  = apperr.Conflict("only DRAFT plans can be activated")
	ErrUnauthorized  = apperr.Unauthorized("authentication required")
)
