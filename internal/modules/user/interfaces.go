package user

import (
	"context"

	"devplan/internal/domain"
	"devplan/internal/policy"
	"devplan/internal/repository"
)

// UserStore is the persistence the user service needs.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, f repository.UserFilter) (domain.Page[domain.User], error)
	UpdateName(ctx context.Context, id, name string) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// Authorizer makes the access decisions over users (policy.Authorizer).
type Authorizer interface {
	AuthorizeUserAccess(ctx context.Context, id domain.Identity, userID string) (*domain.User, error)
	AuthorizeUserList(id domain.Identity) (policy.UserScope, error)
	AuthorizeActivation(id domain.Identity) error
}
