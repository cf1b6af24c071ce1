package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/models"
	"github.com/formgate/formgate/backend/pkg/logger"
)

type TaskTemplateService struct {
	db            *gorm.DB
	calendar      *CalendarService
	cronScheduler *cron.Cron
	entries       map[uint]cron.EntryID
}

func NewTaskTemplateService(db *gorm.DB, calendar *CalendarService) *TaskTemplateService {
	return &TaskTemplateService{
		db:       db,
		calendar: calendar,
		entries:  make(map[uint]cron.EntryID),
	}
}

type CreateTaskTemplateRequest struct {
	ProjectID        uint   `json:"project_id" binding:"required"`
	Name             string `json:"name" binding:"required,max=200"`
	Description      string `json:"description"`
	FormID           uint   `json:"form_id" binding:"required"`
	AssigneeRoleID   uint   `json:"assignee_role_id" binding:"required"`
	DueInDays        int    `json:"due_in_days" binding:"omitempty,min=1,max=365"`
	BusinessDaysOnly bool   `json:"business_days_only"`
	Schedule         string `json:"schedule"`
	IsActive         *bool  `json:"is_active"`
}

type UpdateTaskTemplateRequest struct {
	Name             string `json:"name" binding:"omitempty,max=200"`
	Description      string `json:"description"`
	FormID           *uint  `json:"form_id"`
	AssigneeRoleID   *uint  `json:"assignee_role_id"`
	DueInDays        *int   `json:"due_in_days" binding:"omitempty,min=1,max=365"`
	BusinessDaysOnly *bool  `json:"business_days_only"`
	Schedule         *string `json:"schedule"`
	IsActive         *bool  `json:"is_active"`
}

// List returns a project's task templates.
func (s *TaskTemplateService) List(projectID uint) ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	err := s.db.Preload("Form").Preload("AssigneeRole").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// GetByID returns a template by ID
func (s *TaskTemplateService) GetByID(id uint) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	if err := s.db.Preload("Form").Preload("AssigneeRole").First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// Create creates a task template. Form and assignee role must belong to the
// template's project.
func (s *TaskTemplateService) Create(req *CreateTaskTemplateRequest, userID uint) (*models.TaskTemplate, error) {
	if err := s.validateReferences(req.ProjectID, req.FormID, req.AssigneeRoleID); err != nil {
		return nil, err
	}
	if req.Schedule != "" {
		if err := validateCronSchedule(req.Schedule); err != nil {
			return nil, err
		}
	}

	template := models.TaskTemplate{
		ProjectID:        req.ProjectID,
		Name:             req.Name,
		Description:      req.Description,
		FormID:           req.FormID,
		AssigneeRoleID:   req.AssigneeRoleID,
		DueInDays:        req.DueInDays,
		BusinessDaysOnly: req.BusinessDaysOnly,
		Schedule:         req.Schedule,
		IsActive:         true,
		CreatedBy:        userID,
	}
	if template.DueInDays == 0 {
		template.DueInDays = 7
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	if err := s.db.Create(&template).Error; err != nil {
		return nil, err
	}

	s.rescheduleTemplate(&template)
	return &template, nil
}

// Update updates a template and refreshes its cron entry.
func (s *TaskTemplateService) Update(id uint, req *UpdateTaskTemplateRequest) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	if err := s.db.First(&template, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.FormID != nil {
		updates["form_id"] = *req.FormID
	}
	if req.AssigneeRoleID != nil {
		updates["assignee_role_id"] = *req.AssigneeRoleID
	}
	if req.DueInDays != nil {
		updates["due_in_days"] = *req.DueInDays
	}
	if req.BusinessDaysOnly != nil {
		updates["business_days_only"] = *req.BusinessDaysOnly
	}
	if req.Schedule != nil {
		if *req.Schedule != "" {
			if err := validateCronSchedule(*req.Schedule); err != nil {
				return nil, err
			}
		}
		updates["schedule"] = *req.Schedule
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	formID := template.FormID
	if req.FormID != nil {
		formID = *req.FormID
	}
	roleID := template.AssigneeRoleID
	if req.AssigneeRoleID != nil {
		roleID = *req.AssigneeRoleID
	}
	if err := s.validateReferences(template.ProjectID, formID, roleID); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(&template).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.rescheduleTemplate(&template)
	return &template, nil
}

// Delete removes a template. Instantiated tasks survive with their
// template_id cleared.
func (s *TaskTemplateService) Delete(id uint) error {
	var template models.TaskTemplate
	if err := s.db.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("task template not found")
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("template_id = ?", id).
			Update("template_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&template).Error
	})
	if err != nil {
		return err
	}

	s.unscheduleTemplate(id)
	return nil
}

// Instantiate stamps out one open task per holder of the template's assignee
// role. Holders who already carry an open task from this template are
// skipped, so a recurring schedule does not pile up duplicates.
func (s *TaskTemplateService) Instantiate(templateID uint) (int, error) {
	var template models.TaskTemplate
	if err := s.db.First(&template, templateID).Error; err != nil {
		return 0, err
	}
	if !template.IsActive {
		return 0, nil
	}

	var assignments []models.UserRole
	err := s.db.Where("role_id = ? AND project_id = ?", template.AssigneeRoleID, template.ProjectID).
		Find(&assignments).Error
	if err != nil {
		return 0, err
	}
	if len(assignments) == 0 {
		return 0, nil
	}

	dueDate := s.calendar.DueDate(time.Now(), template.DueInDays, template.BusinessDaysOnly)

	created := 0
	for _, assignment := range assignments {
		var existing int64
		s.db.Model(&models.Task{}).
			Where("template_id = ? AND assignee_id = ? AND status IN ?",
				template.ID, assignment.UserID,
				[]string{models.TaskStatusOpen, models.TaskStatusInProgress}).
			Count(&existing)
		if existing > 0 {
			continue
		}

		task := models.Task{
			ProjectID:  template.ProjectID,
			TemplateID: &template.ID,
			FormID:     template.FormID,
			AssigneeID: assignment.UserID,
			Title:      template.Name,
			Status:     models.TaskStatusOpen,
			DueDate:    &dueDate,
		}
		if err := s.db.Create(&task).Error; err != nil {
			return created, err
		}
		created++
	}

	logger.Infof("[TaskTemplate] Instantiated template %d: %d task(s) created", template.ID, created)
	return created, nil
}

// ProcessJob dispatches queued jobs. Registered as the processor for both
// the sync queue and the asynq worker.
func (s *TaskTemplateService) ProcessJob(ctx context.Context, job *QueueJob) error {
	switch job.Type {
	case JobTypeInstantiateTemplate:
		_, err := s.Instantiate(job.TemplateID)
		return err
	case JobTypeNotifySubmission:
		return s.notifySubmission(job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (s *TaskTemplateService) notifySubmission(job *QueueJob) error {
	var submission models.FormSubmission
	if err := s.db.Preload("Form").First(&submission, job.SubmissionID).Error; err != nil {
		return err
	}

	title := ""
	if submission.Form != nil {
		title = submission.Form.Title
	}
	LogInfo("submission", "received", fmt.Sprintf("New submission for form %q", title),
		submission.UserID, submission.SubmitterIP, "", map[string]interface{}{
			"submission_id": submission.ID,
			"form_id":       submission.FormID,
			"project_id":    job.ProjectID,
		})
	return nil
}

// StartScheduler registers cron entries for every active template that
// carries a schedule and starts the shared scheduler.
func (s *TaskTemplateService) StartScheduler() {
	s.cronScheduler = cron.New()

	var templates []models.TaskTemplate
	if err := s.db.Where("is_active = ? AND schedule != ''", true).Find(&templates).Error; err != nil {
		logger.Errorf("[TaskTemplate] Failed to load scheduled templates: %v", err)
	} else {
		for i := range templates {
			s.addEntry(&templates[i])
		}
	}

	s.cronScheduler.Start()
	logger.Infof("[TaskTemplate] Scheduler started with %d entries", len(s.entries))
}

// StopScheduler stops the cron scheduler.
func (s *TaskTemplateService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *TaskTemplateService) addEntry(template *models.TaskTemplate) {
	templateID := template.ID
	entryID, err := s.cronScheduler.AddFunc(template.Schedule, func() {
		s.enqueueInstantiation(templateID)
	})
	if err != nil {
		logger.Errorf("[TaskTemplate] Invalid schedule for template %d: %v", template.ID, err)
		return
	}
	s.entries[template.ID] = entryID
}

func (s *TaskTemplateService) enqueueInstantiation(templateID uint) {
	queue := GetTaskQueue()
	if queue == nil {
		if _, err := s.Instantiate(templateID); err != nil {
			logger.Errorf("[TaskTemplate] Instantiation failed for template %d: %v", templateID, err)
		}
		return
	}
	job := &QueueJob{Type: JobTypeInstantiateTemplate, TemplateID: templateID}
	if err := queue.Enqueue(job); err != nil {
		logger.Errorf("[TaskTemplate] Failed to enqueue instantiation for template %d: %v", templateID, err)
	}
}

// rescheduleTemplate refreshes the cron entry after create/update.
func (s *TaskTemplateService) rescheduleTemplate(template *models.TaskTemplate) {
	if s.cronScheduler == nil {
		return
	}
	s.unscheduleTemplate(template.ID)

	var fresh models.TaskTemplate
	if err := s.db.First(&fresh, template.ID).Error; err != nil {
		return
	}
	if fresh.IsActive && fresh.Schedule != "" {
		s.addEntry(&fresh)
	}
}

func (s *TaskTemplateService) unscheduleTemplate(id uint) {
	if s.cronScheduler == nil {
		return
	}
	if entryID, ok := s.entries[id]; ok {
		s.cronScheduler.Remove(entryID)
		delete(s.entries, id)
	}
}

func (s *TaskTemplateService) validateReferences(projectID, formID, roleID uint) error {
	var form models.Form
	if err := s.db.Select("id", "project_id").First(&form, formID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("form not found")
		}
		return err
	}
	if form.ProjectID != projectID {
		return errors.New("form does not belong to the template's project")
	}

	var role models.Role
	if err := s.db.Select("id", "project_id").First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("role not found")
		}
		return err
	}
	if role.ProjectID != projectID {
		return errors.New("role does not belong to the template's project")
	}
	return nil
}

func validateCronSchedule(expr string) error {
	_, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	return nil
}
