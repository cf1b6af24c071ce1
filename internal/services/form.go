package services

import (
	"errors"

	"github.com/formgate/formgate/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FormService struct {
	db *gorm.DB
}

func NewFormService(db *gorm.DB) *FormService {
	return &FormService{db: db}
}

type FormListRequest struct {
	Page      int    `form:"page" binding:"min=1"`
	PageSize  int    `form:"page_size" binding:"min=1,max=100"`
	ProjectID *uint  `form:"project_id"`
	Title     string `form:"title"`
	Status    string `form:"status" binding:"omitempty,oneof=draft active closed"`
}

type FormListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Form `json:"items"`
}

type CreateFormRequest struct {
	ProjectID   uint   `json:"project_id" binding:"required"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Schema      string `json:"schema"`
	IsPublic    bool   `json:"is_public"`
	RoleIDs     []uint `json:"role_ids"`
}

type UpdateFormRequest struct {
	Title       string  `json:"title" binding:"omitempty,max=200"`
	Description string  `json:"description"`
	Schema      string  `json:"schema"`
	IsPublic    *bool   `json:"is_public"`
	Status      string  `json:"status" binding:"omitempty,oneof=draft active closed"`
	RoleIDs     *[]uint `json:"role_ids"`
}

// List returns paginated forms.
func (s *FormService) List(req *FormListRequest) (*FormListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var forms []models.Form
	var total int64

	query := s.db.Model(&models.Form{})

	if req.ProjectID != nil {
		query = query.Where("project_id = ?", *req.ProjectID)
	}
	if req.Title != "" {
		query = query.Where("title LIKE ?", "%"+req.Title+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, err
	}

	return &FormListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    forms,
	}, nil
}

// GetByID returns a form by ID
func (s *FormService) GetByID(id uint) (*models.Form, error) {
	var form models.Form
	if err := s.db.First(&form, id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// GetByPublicToken returns a public, active form addressed by its opaque
// token. Non-public forms are never served through this path, even with a
// valid token.
func (s *FormService) GetByPublicToken(token string) (*models.Form, error) {
	var form models.Form
	err := s.db.Where("public_token = ? AND is_public = ?", token, true).First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// Create creates a form in draft status. Every form receives a public token
// up front; it only becomes reachable once is_public is set.
func (s *FormService) Create(req *CreateFormRequest, userID uint) (*models.Form, error) {
	form := models.Form{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Schema:      req.Schema,
		IsPublic:    req.IsPublic,
		PublicToken: uuid.NewString(),
		Status:      models.FormStatusDraft,
		CreatedBy:   userID,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&form).Error; err != nil {
			return err
		}
		return s.replaceRoleRequirements(tx, &form, req.RoleIDs)
	}); err != nil {
		return nil, err
	}

	return &form, nil
}

// Update updates a form, optionally replacing its role requirements.
func (s *FormService) Update(id uint, req *UpdateFormRequest) (*models.Form, error) {
	var form models.Form
	if err := s.db.First(&form, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Schema != "" {
		updates["schema"] = req.Schema
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&form).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.RoleIDs != nil {
			return s.replaceRoleRequirements(tx, &form, *req.RoleIDs)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &form, nil
}

// Delete deletes a form along with its role requirements and submissions.
func (s *FormService) Delete(id uint) error {
	var form models.Form
	if err := s.db.First(&form, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("form not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&models.FormRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.FormSubmission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&form).Error
	})
}

// RoleRequirements returns the role requirements of a form with role info.
func (s *FormService) RoleRequirements(formID uint) ([]models.FormRole, error) {
	var requirements []models.FormRole
	err := s.db.Preload("Role").Where("form_id = ?", formID).Find(&requirements).Error
	if err != nil {
		return nil, err
	}
	return requirements, nil
}

// replaceRoleRequirements swaps the form's role requirement set. Roles must
// belong to the form's own project; cross-project requirements would make
// them unsatisfiable.
func (s *FormService) replaceRoleRequirements(tx *gorm.DB, form *models.Form, roleIDs []uint) error {
	if err := tx.Where("form_id = ?", form.ID).Delete(&models.FormRole{}).Error; err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Role{}).
		Where("project_id = ? AND id IN ?", form.ProjectID, roleIDs).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(roleIDs)) {
		return errors.New("role requirements must reference roles of the form's project")
	}

	for _, roleID := range roleIDs {
		requirement := models.FormRole{FormID: form.ID, RoleID: roleID}
		if err := tx.Create(&requirement).Error; err != nil {
			return err
		}
	}
	return nil
}
