// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"devplan/internal/database"
	"devplan/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database in a per-test temp file.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err, "connect test database")
	require.NoError(t, database.Migrate(db), "migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// UserOption customises a fixture user.
type UserOption func(*domain.User)

func WithManager(managerID string) UserOption {
	return func(u *domain.User) { u.ManagerID = &managerID }
}

func Inactive() UserOption {
	return func(u *domain.User) { u.IsActive = false }
}

func WithPassword(plain string) UserOption {
	return func(u *domain.User) {
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		u.PasswordHash = string(hash)
	}
}

// CreateUser inserts an active user with the given email and role.
func CreateUser(t *testing.T, db *gorm.DB, email string, role domain.Role, opts ...UserOption) *domain.User {
	t.Helper()

	u := &domain.User{
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// CountRefreshTokens returns how many refresh tokens the user currently holds.
func CountRefreshTokens(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&domain.RefreshToken{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
