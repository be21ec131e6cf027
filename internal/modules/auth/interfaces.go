package auth

import (
	"context"
	"time"

	"devplan/internal/domain"
)

// UserReader has only the lookups the session service needs
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RefreshTokenStore stores hashed refresh tokens.
// Calls made with the ctx passed to fn join the transaction.
type RefreshTokenStore interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	DeleteByHash(ctx context.Context, hash string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenCodec signs access tokens and mints refresh tokens
type TokenCodec interface {
	IssueAccessToken(userID string, role domain.Role) (string, error)
	IssueRefreshToken() (string, error)
}

// EventRecorder counts auth outcomes (metrics.Metrics implements it)
type EventRecorder interface {
	RecordAuth(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, string) {}
