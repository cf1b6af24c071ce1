package models

import (
	"time"

	"gorm.io/gorm"
)

// Global role values. Project-level permissions live in ProjectUser and
// UserRole; the global role only distinguishes portal-wide capabilities.
const (
	GlobalRoleAdmin        = "global_admin"
	GlobalRoleProjectAdmin = "project_admin"
	GlobalRoleUser         = "user"
	GlobalRoleApprover     = "approver"
)

// User represents a portal user profile.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Email     string         `gorm:"size:255" json:"email"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	Role      string         `gorm:"size:50;default:user" json:"role"`       // global_admin, project_admin, user, approver
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// IsGlobalAdmin reports whether the user holds the portal-wide admin role.
func (u *User) IsGlobalAdmin() bool { return u.Role == GlobalRoleAdmin }
