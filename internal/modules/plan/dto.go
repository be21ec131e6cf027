package plan

import "time"

type ActionInput struct {
	Description string     `json:"description" validate:"required,max=1000"`
	OwnerID     *string    `json:"ownerId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type GoalInput struct {
	Title      string        `json:"title" validate:"required,max=200"`
	Specific   *string       `json:"specific,omitempty"`
	Measurable *string       `json:"measurable,omitempty"`
	Achievable *string       `json:"achievable,omitempty"`
	Relevant   *string       `json:"relevant,omitempty"`
	TimeBound  *time.Time    `json:"timeBound,omitempty"`
	Actions    []ActionInput `json:"actions,omitempty" validate:"dive"`
}

// CreatePlanRequest creates a DRAFT plan. An empty UserID means the caller.
type CreatePlanRequest struct {
	UserID      string      `json:"userId,omitempty"`
	Title       string      `json:"title" validate:"required,max=200"`
	Description *string     `json:"description,omitempty"`
	PeriodFrom  time.Time   `json:"periodFrom" validate:"required"`
	PeriodTo    time.Time   `json:"periodTo" validate:"required"`
	Goals       []GoalInput `json:"goals,omitempty" validate:"dive"`
}

type CheckInRequest struct {
	Notes       *string `json:"notes,omitempty"`
	ProgressPct *int    `json:"progressPct" validate:"required,min=0,max=100"`
}

type FeedbackRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type ListQuery struct {
	UserID   string `form:"userId"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
