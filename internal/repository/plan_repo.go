package repository

import (
	"context"

	"devplan/internal/database"
	"devplan/internal/domain"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// CreateWithGoals inserts the plan with its nested goals and actions
// atomically.
func (r *PlanRepository) CreateWithGoals(ctx context.Context, p *domain.Plan) error {
	return database.Transaction(ctx, r.db, func(ctx context.Context) error {
		return translate(database.Conn(ctx, r.db).Create(p).Error)
	})
}

func (r *PlanRepository) GetPlan(ctx context.Context, id string) (*domain.Plan, error) {
	var p domain.Plan
	err := database.Conn(ctx, r.db).
		Preload("Goals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Goals.Actions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Goals.CheckIns", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Feedback", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetOwnership resolves the plan owner and the owner's manager in one query.
func (r *PlanRepository) GetOwnership(ctx context.Context, planID string) (domain.PlanOwnership, error) {
	var row struct {
		PlanID         string
		OwnerID        string
		OwnerManagerID *string
	}
	res := database.Conn(ctx, r.db).
		Table("plans").
		Select("plans.id AS plan_id, plans.user_id AS owner_id, users.manager_id AS owner_manager_id").
		Joins("LEFT JOIN users ON users.id = plans.user_id").
		Where("plans.id = ?", planID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return domain.PlanOwnership{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.PlanOwnership{}, ErrNotFound
	}
	return domain.PlanOwnership{
		PlanID:         row.PlanID,
		OwnerID:        row.OwnerID,
		OwnerManagerID: row.OwnerManagerID,
	}, nil
}

func (r *PlanRepository) ListByUser(ctx context.Context, userID string, params PageParams) (domain.Page[domain.Plan], error) {
	page, size, offset := params.normalize()
	out := domain.Page[domain.Plan]{Data: []domain.Plan{}, Page: page, PageSize: size}

	owned := func() *gorm.DB {
		return database.Conn(ctx, r.db).Model(&domain.Plan{}).Where("user_id = ?", userID)
	}
	if err := owned().Count(&out.Total).Error; err != nil {
		return out, err
	}
	err := owned().Order("status ASC").Order("created_at DESC").Limit(size).Offset(offset).Find(&out.Data).Error
	return out, err
}

// TransitionStatus moves the plan from one status to another and reports
// whether it did. It never overwrites a status that changed concurrently.
func (r *PlanRepository) TransitionStatus(ctx context.Context, id string, from, to domain.PlanStatus) (bool, error) {
	res := database.Conn(ctx, r.db).Model(&domain.Plan{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PlanRepository) AddGoal(ctx context.Context, g *domain.Goal) error {
	return database.Transaction(ctx, r.db, func(ctx context.Context) error {
		return translate(database.Conn(ctx, r.db).Create(g).Error)
	})
}

// GetGoal returns the goal only when it belongs to planID.
func (r *PlanRepository) GetGoal(ctx context.Context, planID, goalID string) (*domain.Goal, error) {
	var g domain.Goal
	err := database.Conn(ctx, r.db).Where("id = ? AND plan_id = ?", goalID, planID).First(&g).Error
	if err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (r *PlanRepository) AddAction(ctx context.Context, a *domain.ActionItem) error {
	return translate(database.Conn(ctx, r.db).Create(a).Error)
}

func (r *PlanRepository) AddCheckIn(ctx context.Context, c *domain.CheckIn) error {
	return translate(database.Conn(ctx, r.db).Create(c).Error)
}

func (r *PlanRepository) AddFeedback(ctx context.Context, f *domain.Feedback) error {
	return translate(database.Conn(ctx, r.db).Create(f).Error)
}
