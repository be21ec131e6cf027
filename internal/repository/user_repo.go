package repository

import (
	"context"
	"strings"

	"devplan/internal/database"
	"devplan/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserFilter narrows List. A non-nil ManagerID limits the result to that
// manager's direct reports.
type UserFilter struct {
	ManagerID *string
	PageParams
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return translate(database.Conn(ctx, r.db).Create(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := database.Conn(ctx, r.db).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&domain.User{}).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) (domain.Page[domain.User], error) {
	page, size, offset := f.normalize()
	out := domain.Page[domain.User]{Data: []domain.User{}, Page: page, PageSize: size}

	scoped := func() *gorm.DB {
		q := database.Conn(ctx, r.db).Model(&domain.User{})
		if f.ManagerID != nil {
			q = q.Where("manager_id = ?", *f.ManagerID)
		}
		return q
	}
	if err := scoped().Count(&out.Total).Error; err != nil {
		return out, err
	}
	err := scoped().Order("created_at DESC").Order("id").Limit(size).Offset(offset).Find(&out.Data).Error
	return out, err
}

func (r *UserRepository) UpdateName(ctx context.Context, id, name string) (*domain.User, error) {
	res := database.Conn(ctx, r.db).Model(&domain.User{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// SetActive flips the account flag. Deactivation also deletes every refresh
// token of the user in the same transaction, so no session outlives it.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return database.Transaction(ctx, r.db, func(ctx context.Context) error {
		conn := database.Conn(ctx, r.db)
		res := conn.Model(&domain.User{}).Where("id = ?", id).Update("is_active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if active {
			return nil
		}
		return conn.Where("user_id = ?", id).Delete(&domain.RefreshToken{}).Error
	})
}
