package services

import (
	"errors"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"omitempty,max=100"`
	Description string `json:"description"`
}

type AssignRoleRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// List returns all roles of a project.
func (s *RoleService) List(projectID uint) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Where("project_id = ?", projectID).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Create creates a role. Role names are unique within a project.
func (s *RoleService) Create(projectID uint, req *CreateRoleRequest) (*models.Role, error) {
	var count int64
	s.db.Model(&models.Role{}).Where("project_id = ? AND name = ?", projectID, req.Name).Count(&count)
	if count > 0 {
		return nil, errors.New("a role with this name already exists in the project")
	}

	role := models.Role{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Update renames a role, keeping per-project name uniqueness.
func (s *RoleService) Update(projectID, roleID uint, req *UpdateRoleRequest) (*models.Role, error) {
	role, err := s.getProjectRole(projectID, roleID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" && req.Name != role.Name {
		var count int64
		s.db.Model(&models.Role{}).Where("project_id = ? AND name = ?", projectID, req.Name).Count(&count)
		if count > 0 {
			return nil, errors.New("a role with this name already exists in the project")
		}
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}

	if err := s.db.Model(role).Updates(updates).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a role along with its assignments and form requirements.
func (s *RoleService) Delete(projectID, roleID uint) error {
	role, err := s.getProjectRole(projectID, roleID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&models.FormRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
}

// Assign grants a project role to an active member of the same project.
func (s *RoleService) Assign(projectID, roleID uint, req *AssignRoleRequest) (*models.UserRole, error) {
	if _, err := s.getProjectRole(projectID, roleID); err != nil {
		return nil, err
	}

	var membership models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, req.UserID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("user is not a member of this project")
	}
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ?", req.UserID, roleID).Count(&count)
	if count > 0 {
		return nil, errors.New("user already holds this role")
	}

	assignment := models.UserRole{
		UserID:    req.UserID,
		RoleID:    roleID,
		ProjectID: projectID,
	}
	if err := s.db.Create(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Unassign revokes a role from a user.
func (s *RoleService) Unassign(projectID, roleID, userID uint) error {
	result := s.db.Where("project_id = ? AND role_id = ? AND user_id = ?", projectID, roleID, userID).
		Delete(&models.UserRole{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("role assignment not found")
	}
	return nil
}

// Holders returns the users assigned a role, with user info preloaded.
func (s *RoleService) Holders(projectID, roleID uint) ([]models.UserRole, error) {
	var assignments []models.UserRole
	err := s.db.Preload("User").
		Where("project_id = ? AND role_id = ?", projectID, roleID).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *RoleService) getProjectRole(projectID, roleID uint) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("project_id = ? AND id = ?", projectID, roleID).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("role not found")
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
