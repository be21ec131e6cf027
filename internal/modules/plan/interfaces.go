package plan

import (
	"context"

	"devplan/internal/domain"
	"devplan/internal/repository"
)

// PlanStore persists the plan tree
type PlanStore interface {
	CreateWithGoals(ctx context.Context, p *domain.Plan) error
	GetPlan(ctx context.Context, id string) (*domain.Plan, error)
	ListByUser(ctx context.Context, userID string, params repository.PageParams) (domain.Page[domain.Plan], error)
	TransitionStatus(ctx context.Context, id string, from, to domain.PlanStatus) (bool, error)
	AddGoal(ctx context.Context, g *domain.Goal) error
	GetGoal(ctx context.Context, planID, goalID string) (*domain.Goal, error)
	AddAction(ctx context.Context, a *domain.ActionItem) error
	AddCheckIn(ctx context.Context, c *domain.CheckIn) error
	AddFeedback(ctx context.Context, f *domain.Feedback) error
}

// Authorizer makes plan access decisions (policy.Authorizer)
type Authorizer interface {
	AuthorizePlanRead(ctx context.Context, id domain.Identity, planID string) (domain.PlanOwnership, error)
	AuthorizeFeedback(ctx context.Context, id domain.Identity, planID string) (domain.PlanOwnership, error)
	AuthorizePlanCreation(ctx context.Context, id domain.Identity, requestedUserID string) (string, error)
	AuthorizePlanListing(ctx context.Context, id domain.Identity, ownerID string) (string, error)
}
