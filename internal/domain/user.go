package domain

import (
	"time"

	"gorm.io/gorm"
)

// Role is the fixed RBAC role assigned to every user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleViewer    Role = "viewer"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleRecruiter, RoleViewer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a CRM operator. Deactivation sets DeletedAt so call and activity rows keep their reference.
type User struct {
	ID           int64          `gorm:"primaryKey"`
	Username     string         `gorm:"size:50;uniqueIndex;not null"`
	Email        string         `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string         `gorm:"size:255;not null"`
	FullName     string         `gorm:"size:100;not null"`
	Role         Role           `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// Active reports whether the user has not been deactivated.
func (u *User) Active() bool {
	return !u.DeletedAt.Valid
}
