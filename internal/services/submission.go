package services

import (
	"errors"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

var ErrFormNotFillable = errors.New("form is not accepting submissions")

type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

type SubmissionListRequest struct {
	Page     int   `form:"page" binding:"min=1"`
	PageSize int   `form:"page_size" binding:"min=1,max=100"`
	FormID   *uint `form:"form_id"`
	UserID   *uint `form:"user_id"`
}

type SubmissionListResponse struct {
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Items    []models.FormSubmission `json:"items"`
}

// List returns paginated submissions.
func (s *SubmissionService) List(req *SubmissionListRequest) (*SubmissionListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var submissions []models.FormSubmission
	var total int64

	query := s.db.Model(&models.FormSubmission{}).Preload("User")

	if req.FormID != nil {
		query = query.Where("form_id = ?", *req.FormID)
	}
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return &SubmissionListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    submissions,
	}, nil
}

// GetByID returns a submission by ID
func (s *SubmissionService) GetByID(id uint) (*models.FormSubmission, error) {
	var submission models.FormSubmission
	if err := s.db.Preload("User").Preload("Form").First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// Create records a submission against an active form. userID is nil for the
// public path. Notification fan-out goes through the task queue so slow
// targets never hold up the response.
func (s *SubmissionService) Create(form *models.Form, userID *uint, data string, submitterIP string) (*models.FormSubmission, error) {
	if form.Status != models.FormStatusActive {
		return nil, ErrFormNotFillable
	}

	submission := models.FormSubmission{
		FormID:      form.ID,
		UserID:      userID,
		Data:        data,
		SubmitterIP: submitterIP,
	}

	if err := s.db.Create(&submission).Error; err != nil {
		return nil, err
	}

	if queue := GetTaskQueue(); queue != nil {
		job := &QueueJob{
			Type:         JobTypeNotifySubmission,
			SubmissionID: submission.ID,
			FormID:       form.ID,
			ProjectID:    form.ProjectID,
		}
		if err := queue.Enqueue(job); err != nil {
			LogWarning("submission", "enqueue_notification", err.Error(), userID, submitterIP, "", nil)
		}
	}

	// Completing a submission closes the assignee's matching open task.
	if userID != nil {
		s.completeMatchingTask(form.ID, *userID)
	}

	return &submission, nil
}

func (s *SubmissionService) completeMatchingTask(formID, userID uint) {
	result := s.db.Model(&models.Task{}).
		Where("form_id = ? AND assignee_id = ? AND status IN ?",
			formID, userID, []string{models.TaskStatusOpen, models.TaskStatusInProgress}).
		Update("status", models.TaskStatusDone)
	if result.Error != nil {
		LogWarning("submission", "complete_task", result.Error.Error(), &userID, "", "", nil)
	}
}
