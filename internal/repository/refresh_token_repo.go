package repository

import (
	"context"
	"time"

	"devplan/internal/database"
	"devplan/internal/domain"

	"gorm.io/gorm"
)

// RefreshTokenRepository provides DB access for refresh tokens.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.Transaction(ctx, r.db, fn)
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return translate(database.Conn(ctx, r.db).Create(t).Error)
}

// GetByHash loads the token together with its owner.
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := database.Conn(ctx, r.db).Preload("User").Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	if t.User == nil {
		return nil, ErrNotFound
	}
	return &t, nil
}

// DeleteByHash reports whether a row was actually removed. Concurrent callers
// racing on the same hash see true at most once.
func (r *RefreshTokenRepository) DeleteByHash(ctx context.Context, hash string) (bool, error) {
	res := database.Conn(ctx, r.db).Where("token_hash = ?", hash).Delete(&domain.RefreshToken{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := database.Conn(ctx, r.db).Where("user_id = ?", userID).Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := database.Conn(ctx, r.db).Where("expires_at < ?", before.UTC()).Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}
