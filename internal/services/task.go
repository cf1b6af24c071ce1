package services

import (
	"errors"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

type TaskListRequest struct {
	Page       int    `form:"page" binding:"min=1"`
	PageSize   int    `form:"page_size" binding:"min=1,max=100"`
	ProjectID  *uint  `form:"project_id"`
	AssigneeID *uint  `form:"assignee_id"`
	Status     string `form:"status" binding:"omitempty,oneof=open in_progress done cancelled"`
}

type TaskListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Task `json:"items"`
}

// List returns paginated tasks.
func (s *TaskService) List(req *TaskListRequest) (*TaskListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var tasks []models.Task
	var total int64

	query := s.db.Model(&models.Task{}).Preload("Form").Preload("Assignee")

	if req.ProjectID != nil {
		query = query.Where("project_id = ?", *req.ProjectID)
	}
	if req.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *req.AssigneeID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).
		Order("due_date IS NULL, due_date ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return &TaskListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    tasks,
	}, nil
}

// GetByID returns a task by ID
func (s *TaskService) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Preload("Form").Preload("Assignee").Preload("Template").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus moves a task along its lifecycle. Done and cancelled tasks
// are terminal.
func (s *TaskService) UpdateStatus(id uint, status string, actorID uint, actorIsAdmin bool) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		return nil, err
	}

	// Assignees manage their own tasks; admins can touch any in the project.
	if task.AssigneeID != actorID && !actorIsAdmin {
		return nil, errors.New("only the assignee or a project admin can update this task")
	}

	if task.Status == models.TaskStatusDone || task.Status == models.TaskStatusCancelled {
		return nil, errors.New("task is already closed")
	}

	switch status {
	case models.TaskStatusInProgress, models.TaskStatusDone, models.TaskStatusCancelled:
	default:
		return nil, errors.New("invalid task status")
	}

	if err := s.db.Model(&task).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(id uint) error {
	result := s.db.Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("task not found")
	}
	return nil
}
