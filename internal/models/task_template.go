package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskTemplate describes how tasks are stamped out for a project: which form
// to fill, which role's holders get assigned, and how the due date is
// computed. Schedule, when set, is a cron expression for recurring
// instantiation.
type TaskTemplate struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProjectID        uint           `gorm:"index;not null" json:"project_id"`
	Project          *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name             string         `gorm:"size:200;not null" json:"name"`
	Description      string         `gorm:"size:1000" json:"description"`
	FormID           uint           `gorm:"index;not null" json:"form_id"`
	Form             *Form          `gorm:"foreignKey:FormID" json:"form,omitempty"`
	AssigneeRoleID   uint           `gorm:"index;not null" json:"assignee_role_id"`
	AssigneeRole     *Role          `gorm:"foreignKey:AssigneeRoleID" json:"assignee_role,omitempty"`
	DueInDays        int            `gorm:"default:7" json:"due_in_days"`
	BusinessDaysOnly bool           `gorm:"default:false" json:"business_days_only"`
	Schedule         string         `gorm:"size:100" json:"schedule"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedBy        uint           `json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TaskTemplate) TableName() string { return "task_templates" }
