package policy

import (
	"context"
	"errors"
	"testing"

	"devplan/internal/domain"
	"devplan/internal/pkg/apperr"
	"devplan/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var (
	admin   = domain.Identity{UserID: "admin", Role: domain.RoleAdmin}
	manager = domain.Identity{UserID: "mgr", Role: domain.RoleManager}
	report  = domain.Identity{UserID: "report", Role: domain.RoleUser}
	other   = domain.Identity{UserID: "other", Role: domain.RoleUser}
)

func TestReadPlan(t *testing.T) {
	reportPlan := domain.PlanOwnership{PlanID: "p1", OwnerID: "report", OwnerManagerID: strPtr("mgr")}
	otherPlan := domain.PlanOwnership{PlanID: "p2", OwnerID: "other"}
	managerPlan := domain.PlanOwnership{PlanID: "p3", OwnerID: "mgr"}

	tests := []struct {
		name string
		id   domain.Identity
		plan domain.PlanOwnership
		want bool
	}{
		{"admin reads anything", admin, otherPlan, true},
		{"manager reads subordinate", manager, reportPlan, true},
		{"manager reads own", manager, managerPlan, true},
		{"manager denied unrelated", manager, otherPlan, false},
		{"user reads own", report, reportPlan, true},
		{"user denied other", other, reportPlan, false},
		{"user denied manager plan", report, managerPlan, false},
		{"unknown role denied", domain.Identity{UserID: "report"}, reportPlan, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadPlan(tt.id, tt.plan))
			assert.Equal(t, tt.want, AddFeedback(tt.id, tt.plan))
		})
	}
}

func TestAccessUser(t *testing.T) {
	sub := &domain.User{ID: "report", ManagerID: strPtr("mgr")}
	stranger := &domain.User{ID: "other"}

	assert.True(t, AccessUser(admin, stranger))
	assert.True(t, AccessUser(manager, sub))
	assert.False(t, AccessUser(manager, stranger))
	assert.True(t, AccessUser(report, sub))
	assert.False(t, AccessUser(other, sub))
	assert.False(t, AccessUser(admin, nil))

	assert.True(t, CreatePlanFor(manager, sub))
	assert.False(t, CreatePlanFor(report, stranger))
}

func TestListUsersAndActivation(t *testing.T) {
	scope, ok := ListUsers(admin)
	assert.True(t, ok)
	assert.True(t, scope.All)

	scope, ok = ListUsers(manager)
	assert.True(t, ok)
	assert.False(t, scope.All)
	assert.Equal(t, "mgr", scope.ManagerID)

	_, ok = ListUsers(report)
	assert.False(t, ok)

	assert.True(t, ChangeActivation(admin))
	assert.False(t, ChangeActivation(manager))
	assert.False(t, ChangeActivation(report))
}

type mockPlans struct{ mock.Mock }

func (m *mockPlans) GetOwnership(ctx context.Context, planID string) (domain.PlanOwnership, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(domain.PlanOwnership), args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestAuthorizer_PlanReadOrdering(t *testing.T) {
	plans := new(mockPlans)
	a := NewAuthorizer(plans, new(mockUsers))
	ctx := context.Background()

	plans.On("GetOwnership", mock.Anything, "missing").Return(domain.PlanOwnership{}, repository.ErrNotFound)
	plans.On("GetOwnership", mock.Anything, "p1").
		Return(domain.PlanOwnership{PlanID: "p1", OwnerID: "report", OwnerManagerID: strPtr("mgr")}, nil)
	plans.On("GetOwnership", mock.Anything, "broken").Return(domain.PlanOwnership{}, errors.New("db down"))

	_, err := a.AuthorizePlanRead(ctx, domain.Identity{}, "p1")
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))

	_, err = a.AuthorizePlanRead(ctx, admin, "  ")
	assert.Equal(t, apperr.CodeBadRequest, apperr.CodeOf(err))

	_, err = a.AuthorizePlanRead(ctx, other, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = a.AuthorizePlanRead(ctx, other, "p1")
	assert.ErrorIs(t, err, ErrForbidden)

	own, err := a.AuthorizePlanRead(ctx, manager, "p1")
	require.NoError(t, err)
	assert.Equal(t, "report", own.OwnerID)

	_, err = a.AuthorizeFeedback(ctx, report, "p1")
	assert.NoError(t, err)

	_, err = a.AuthorizePlanRead(ctx, admin, "broken")
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestAuthorizer_PlanCreation(t *testing.T) {
	users := new(mockUsers)
	a := NewAuthorizer(new(mockPlans), users)
	ctx := context.Background()

	users.On("GetByID", mock.Anything, "report").Return(&domain.User{ID: "report", ManagerID: strPtr("mgr")}, nil)
	users.On("GetByID", mock.Anything, "other").Return(&domain.User{ID: "other"}, nil)
	users.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	owner, err := a.AuthorizePlanCreation(ctx, report, "")
	require.NoError(t, err)
	assert.Equal(t, "report", owner)

	owner, err = a.AuthorizePlanCreation(ctx, manager, "report")
	require.NoError(t, err)
	assert.Equal(t, "report", owner)

	_, err = a.AuthorizePlanCreation(ctx, manager, "other")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = a.AuthorizePlanCreation(ctx, manager, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	owner, err = a.AuthorizePlanCreation(ctx, admin, "other")
	require.NoError(t, err)
	assert.Equal(t, "other", owner)

	// A USER is refused without revealing whether the target exists.
	_, err = a.AuthorizePlanCreation(ctx, report, "ghost")
	assert.ErrorIs(t, err, ErrForbidden)
	users.AssertNotCalled(t, "GetByID", mock.Anything, "ghost")
}

func TestAuthorizer_UserAccessAndListing(t *testing.T) {
	users := new(mockUsers)
	a := NewAuthorizer(new(mockPlans), users)
	ctx := context.Background()

	users.On("GetByID", mock.Anything, "report").Return(&domain.User{ID: "report", ManagerID: strPtr("mgr")}, nil)
	users.On("GetByID", mock.Anything, "other").Return(&domain.User{ID: "other"}, nil)

	_, err := a.AuthorizeUserAccess(ctx, manager, "report")
	assert.NoError(t, err)
	_, err = a.AuthorizeUserAccess(ctx, report, "other")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = a.AuthorizeUserAccess(ctx, report, "")
	assert.Equal(t, apperr.CodeBadRequest, apperr.CodeOf(err))

	owner, err := a.AuthorizePlanListing(ctx, report, "")
	require.NoError(t, err)
	assert.Equal(t, "report", owner)
	_, err = a.AuthorizePlanListing(ctx, report, "other")
	assert.ErrorIs(t, err, ErrForbidden)
	owner, err = a.AuthorizePlanListing(ctx, manager, "report")
	require.NoError(t, err)
	assert.Equal(t, "report", owner)

	_, err = a.AuthorizeUserList(report)
	assert.ErrorIs(t, err, ErrForbidden)
	scope, err := a.AuthorizeUserList(manager)
	require.NoError(t, err)
	assert.Equal(t, "mgr", scope.ManagerID)

	assert.ErrorIs(t, a.AuthorizeActivation(manager), ErrForbidden)
	assert.NoError(t, a.AuthorizeActivation(admin))
	assert.ErrorIs(t, a.AuthorizeActivation(domain.Identity{}), ErrUnauthenticated)
}
