package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status values.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
	TaskStatusCancelled  = "cancelled"
)

// Task is an instantiated unit of work: one assignee, one form to fill, one
// due date.
type Task struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProjectID  uint           `gorm:"index;not null" json:"project_id"`
	Project    *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	TemplateID *uint          `gorm:"index" json:"template_id"`
	Template   *TaskTemplate  `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	FormID     uint           `gorm:"index;not null" json:"form_id"`
	Form       *Form          `gorm:"foreignKey:FormID" json:"form,omitempty"`
	AssigneeID uint           `gorm:"index;not null" json:"assignee_id"`
	Assignee   *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Title      string         `gorm:"size:200;not null" json:"title"`
	Status     string         `gorm:"size:50;default:open" json:"status"` // open, in_progress, done, cancelled
	DueDate    *time.Time     `gorm:"index" json:"due_date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }
