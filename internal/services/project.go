package services

import (
	"errors"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Name     string `form:"name"`
	Status   string `form:"status"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=active archived"`
}

// List returns paginated projects. When memberID is non-zero the result is
// restricted to projects where that user has an active membership.
func (s *ProjectService) List(req *ProjectListRequest, memberID uint) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var projects []models.Project
	var total int64

	query := s.db.Model(&models.Project{})

	if memberID != 0 {
		query = query.Where(
			"id IN (?)",
			s.db.Model(&models.ProjectUser{}).
				Select("project_id").
				Where("user_id = ? AND status = ?", memberID, models.MembershipActive),
		)
	}
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    projects,
	}, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Create creates a new project. The creator becomes its first admin member
// so the at-least-one-admin invariant holds from the start.
func (s *ProjectService) Create(req *CreateProjectRequest, userID uint) (*models.Project, error) {
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      "active",
		CreatedBy:   userID,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		membership := models.ProjectUser{
			ProjectID: project.ID,
			UserID:    userID,
			IsAdmin:   true,
			Status:    models.MembershipActive,
		}
		return tx.Create(&membership).Error
	}); err != nil {
		return nil, err
	}

	return &project, nil
}

// Update updates a project
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if err := s.db.Model(&project).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// Delete deletes a project and everything it owns: memberships, roles, role
// assignments, forms, form role requirements, submissions, task templates
// and tasks, all in one transaction.
func (s *ProjectService) Delete(id uint) error {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("project not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		formIDs := tx.Model(&models.Form{}).Select("id").Where("project_id = ?", id)

		if err := tx.Where("form_id IN (?)", formIDs).Delete(&models.FormRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id IN (?)", formIDs).Delete(&models.FormSubmission{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.Task{},
			&models.TaskTemplate{},
			&models.Form{},
			&models.UserRole{},
			&models.Role{},
			&models.ProjectUser{},
		} {
			if err := tx.Where("project_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}
