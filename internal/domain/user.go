package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:120;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null"`
	ManagerID    *string   `json:"managerId,omitempty" gorm:"type:varchar(36);index"`
	IsActive     bool      `json:"isActive" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// ReportsTo reports whether managerID is the direct manager of u.
func (u *User) ReportsTo(managerID string) bool {
	return u.ManagerID != nil && *u.ManagerID != "" && *u.ManagerID == managerID
}

// Identity is the authenticated caller of a request. It is derived from a
// verified access token and never persisted.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsZero() bool {
	return i.UserID == "" || !i.Role.Valid()
}

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
