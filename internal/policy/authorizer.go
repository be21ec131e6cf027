package policy

import (
	"context"
	"errors"
	"strings"

	"devplan/internal/domain"
	"devplan/internal/pkg/apperr"
	"devplan/internal/repository"
)

var (
	ErrUnauthenticated = apperr.Unauthorized("authentication required")
	ErrForbidden       = apperr.Forbidden("access denied")
	ErrPlanNotFound    = apperr.NotFound("plan not found")
	ErrUserNotFound    = apperr.NotFound("user not found")
)

type PlanOwnerLookup interface {
	GetOwnership(ctx context.Context, planID string) (domain.PlanOwnership, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Authorizer applies the decision functions to stored resources.
type Authorizer struct {
	plans PlanOwnerLookup
	users UserLookup
}

func NewAuthorizer(plans PlanOwnerLookup, users UserLookup) *Authorizer {
	return &Authorizer{plans: plans, users: users}
}

func (a *Authorizer) AuthorizePlanRead(ctx context.Context, id domain.Identity, planID string) (domain.PlanOwnership, error) {
	return a.authorizePlan(ctx, id, planID, ReadPlan)
}

func (a *Authorizer) AuthorizeFeedback(ctx context.Context, id domain.Identity, planID string) (domain.PlanOwnership, error) {
	return a.authorizePlan(ctx, id, planID, AddFeedback)
}

func (a *Authorizer) authorizePlan(
	ctx context.Context,
	id domain.Identity,
	planID string,
	allow func(domain.Identity, domain.PlanOwnership) bool,
) (domain.PlanOwnership, error) {
	if id.IsZero() {
		return domain.PlanOwnership{}, ErrUnauthenticated
	}
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return domain.PlanOwnership{}, apperr.BadRequest("plan id is required")
	}

	own, err := a.plans.GetOwnership(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PlanOwnership{}, ErrPlanNotFound
		}
		return domain.PlanOwnership{}, apperr.Internal(err)
	}
	if !allow(id, own) {
		return domain.PlanOwnership{}, ErrForbidden
	}
	return own, nil
}

// AuthorizePlanCreation resolves the owner of a new plan. An empty request
// means the caller. A USER asking for anyone else is refused before any
// lookup, so the answer does not reveal whether that user exists.
func (a *Authorizer) AuthorizePlanCreation(ctx context.Context, id domain.Identity, requestedUserID string) (string, error) {
	if id.IsZero() {
		return "", ErrUnauthenticated
	}
	ownerID := strings.TrimSpace(requestedUserID)
	if ownerID == "" || ownerID == id.UserID {
		return id.UserID, nil
	}
	if !id.Role.AtLeast(domain.RoleManager) {
		return "", ErrForbidden
	}

	target, err := a.loadUser(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if !CreatePlanFor(id, target) {
		return "", ErrForbidden
	}
	return target.ID, nil
}

// AuthorizeUserAccess loads the target user and checks id may see or edit it.
func (a *Authorizer) AuthorizeUserAccess(ctx context.Context, id domain.Identity, userID string) (*domain.User, error) {
	if id.IsZero() {
		return nil, ErrUnauthenticated
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.BadRequest("user id is required")
	}
	target, err := a.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !AccessUser(id, target) {
		return nil, ErrForbidden
	}
	return target, nil
}

// AuthorizePlanListing checks id may list the plans of ownerID, defaulting
// to the caller's own plans.
func (a *Authorizer) AuthorizePlanListing(ctx context.Context, id domain.Identity, ownerID string) (string, error) {
	if id.IsZero() {
		return "", ErrUnauthenticated
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || ownerID == id.UserID {
		return id.UserID, nil
	}
	if !id.Role.AtLeast(domain.RoleManager) {
		return "", ErrForbidden
	}
	target, err := a.AuthorizeUserAccess(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	return target.ID, nil
}

func (a *Authorizer) AuthorizeUserList(id domain.Identity) (UserScope, error) {
	if id.IsZero() {
		return UserScope{}, ErrUnauthenticated
	}
	scope, ok := ListUsers(id)
	if !ok {
		return UserScope{}, ErrForbidden
	}
	return scope, nil
}

func (a *Authorizer) AuthorizeActivation(id domain.Identity) error {
	if id.IsZero() {
		return ErrUnauthenticated
	}
	if !ChangeActivation(id) {
		return ErrForbidden
	}
	return nil
}

func (a *Authorizer) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}
