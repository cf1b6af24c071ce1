package models

import (
	"time"

	"gorm.io/gorm"
)

// Membership status values.
const (
	MembershipActive   = "active"
	MembershipPending  = "pending"
	MembershipInactive = "inactive"
	MembershipRejected = "rejected"
)

// ProjectUser represents a user's membership in a project.
// A user has at most one membership row per project.
type ProjectUser struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	Status    string         `gorm:"size:50;default:pending" json:"status"` // active, pending, inactive, rejected
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectUser) TableName() string { return "project_users" }
