package models

import (
	"time"

	"gorm.io/gorm"
)

// FormSubmission is a filled-in form. UserID is nil for submissions arriving
// through the public rendering path.
type FormSubmission struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	FormID      uint           `gorm:"index;not null" json:"form_id"`
	Form        *Form          `gorm:"foreignKey:FormID" json:"form,omitempty"`
	UserID      *uint          `gorm:"index" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Data        string         `gorm:"type:text;not null" json:"data"`
	SubmitterIP string         `gorm:"size:50" json:"submitter_ip"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FormSubmission) TableName() string { return "form_submissions" }
