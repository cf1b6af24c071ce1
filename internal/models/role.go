package models

import (
	"time"

	"gorm.io/gorm"
)

// Role represents a project-scoped role. Role names are unique within a
// project.
type Role struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"uniqueIndex:idx_project_role_name;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name        string         `gorm:"uniqueIndex:idx_project_role_name;size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Role) TableName() string { return "roles" }

// UserRole assigns a project-scoped role to a user. The project_id column is
// denormalized from the role so assignment lookups stay a single exact-match
// filter; the unique index spans the full triple.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_role;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RoleID    uint      `gorm:"uniqueIndex:idx_user_role;not null" json:"role_id"`
	Role      *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	ProjectID uint      `gorm:"uniqueIndex:idx_user_role;index;not null" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRole) TableName() string { return "user_roles" }
