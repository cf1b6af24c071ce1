package models

import (
	"time"

	"gorm.io/gorm"
)

// Form status values.
const (
	FormStatusDraft  = "draft"
	FormStatusActive = "active"
	FormStatusClosed = "closed"
)

// Form represents a project-owned form definition. The schema payload is an
// opaque JSON document rendered by the frontend.
type Form struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"size:1000" json:"description"`
	Schema      string         `gorm:"type:text" json:"schema"`
	IsPublic    bool           `gorm:"default:false" json:"is_public"`
	PublicToken string         `gorm:"uniqueIndex;size:36" json:"public_token"`
	Status      string         `gorm:"size:50;default:draft" json:"status"` // draft, active, closed
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Form) TableName() string { return "forms" }

// FormRole requires that a form's caller holds the referenced role. A form
// with no FormRole rows is accessible to any active project member.
type FormRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FormID    uint      `gorm:"uniqueIndex:idx_form_role;not null" json:"form_id"`
	Form      *Form     `gorm:"foreignKey:FormID" json:"form,omitempty"`
	RoleID    uint      `gorm:"uniqueIndex:idx_form_role;not null" json:"role_id"`
	Role      *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (FormRole) TableName() string { return "form_roles" }
