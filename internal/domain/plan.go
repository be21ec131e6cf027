package domain

import (
	"time"

	"gorm.io/gorm"
)

type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "DRAFT"
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusArchived  PlanStatus = "ARCHIVED"
)

// Plan is an individual development plan (PDI) owned by one user.
// PeriodTo is always after PeriodFrom.
type Plan struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string     `json:"userId" gorm:"type:varchar(36);index;not null"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description *string    `json:"description,omitempty"`
	Status      PlanStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	PeriodFrom  time.Time  `json:"periodFrom" gorm:"not null"`
	PeriodTo    time.Time  `json:"periodTo" gorm:"not null"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Goals    []Goal     `json:"goals,omitempty" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	Feedback []Feedback `json:"feedback,omitempty" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

func (p *Plan) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Goal follows the SMART breakdown; every part except the title is optional.
type Goal struct {
	ID         string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	PlanID     string     `json:"planId" gorm:"type:varchar(36);index;not null"`
	Title      string     `json:"title" gorm:"size:200;not null"`
	Specific   *string    `json:"specific,omitempty"`
	Measurable *string    `json:"measurable,omitempty"`
	Achievable *string    `json:"achievable,omitempty"`
	Relevant   *string    `json:"relevant,omitempty"`
	TimeBound  *time.Time `json:"timeBound,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Actions  []ActionItem `json:"actions,omitempty" gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE"`
	CheckIns []CheckIn    `json:"checkIns,omitempty" gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE"`
}

func (g *Goal) BeforeCreate(*gorm.DB) error {
	assignID(&g.ID)
	return nil
}

type ActionItem struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	GoalID      string     `json:"goalId" gorm:"type:varchar(36);index;not null"`
	Description string     `json:"description" gorm:"not null"`
	OwnerID     *string    `json:"ownerId,omitempty" gorm:"type:varchar(36)"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (a *ActionItem) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

type CheckIn struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	GoalID      string    `json:"goalId" gorm:"type:varchar(36);index;not null"`
	Notes       *string   `json:"notes,omitempty"`
	ProgressPct int       `json:"progressPct" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c *CheckIn) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type Feedback struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	PlanID    string    `json:"planId" gorm:"type:varchar(36);index;not null"`
	AuthorID  string    `json:"authorId" gorm:"type:varchar(36);index;not null"`
	Message   string    `json:"message" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *Feedback) BeforeCreate(*gorm.DB) error {
	assignID(&f.ID)
	return nil
}

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Plan{},
		&Goal{},
		&ActionItem{},
		&CheckIn{},
		&Feedback{},
	}
}

// Page is one page of a paged listing.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// PlanOwnership is what authorization needs to know about a plan: who owns
// it and who that owner reports to.
type PlanOwnership struct {
	PlanID         string
	OwnerID        string
	OwnerManagerID *string
}

func (o PlanOwnership) OwnerReportsTo(managerID string) bool {
	return o.OwnerManagerID != nil && *o.OwnerManagerID != "" && *o.OwnerManagerID == managerID
}
