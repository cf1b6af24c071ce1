package services

import (
	"errors"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

// ErrLastAdmin is returned when an operation would leave a project without
// any active admin membership.
var ErrLastAdmin = errors.New("project must retain at least one active admin")

type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

type MemberListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Status   string `form:"status"`
}

type MemberListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ProjectUser `json:"items"`
}

type AddMemberRequest struct {
	UserID  uint `json:"user_id" binding:"required"`
	IsAdmin bool `json:"is_admin"`
}

type UpdateMemberRequest struct {
	IsAdmin *bool   `json:"is_admin"`
	Status  *string `json:"status" binding:"omitempty,oneof=active pending inactive rejected"`
}

// List returns the memberships of a project with user info preloaded.
func (s *MemberService) List(projectID uint, req *MemberListRequest) (*MemberListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var memberships []models.ProjectUser
	var total int64

	query := s.db.Model(&models.ProjectUser{}).Where("project_id = ?", projectID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("User").Offset(offset).Limit(req.PageSize).
		Order("created_at ASC").Find(&memberships).Error; err != nil {
		return nil, err
	}

	return &MemberListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    memberships,
	}, nil
}

// Add creates a membership in pending status, or active when added by an
// admin as admin. A user has at most one membership row per project.
func (s *MemberService) Add(projectID uint, req *AddMemberRequest) (*models.ProjectUser, error) {
	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	var existing models.ProjectUser
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, req.UserID).First(&existing).Error
	if err == nil {
		return nil, errors.New("user is already a member of this project")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	membership := models.ProjectUser{
		ProjectID: projectID,
		UserID:    req.UserID,
		IsAdmin:   req.IsAdmin,
		Status:    models.MembershipPending,
	}
	if req.IsAdmin {
		membership.Status = models.MembershipActive
	}

	if err := s.db.Create(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// Update changes a membership's admin flag or status. Demoting or
// deactivating the last active admin is rejected.
func (s *MemberService) Update(projectID, userID uint, req *UpdateMemberRequest) (*models.ProjectUser, error) {
	var membership models.ProjectUser
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("membership not found")
		}
		return nil, err
	}

	losesAdmin := req.IsAdmin != nil && !*req.IsAdmin
	losesActive := req.Status != nil && *req.Status != models.MembershipActive
	if membership.IsAdmin && membership.Status == models.MembershipActive && (losesAdmin || losesActive) {
		count, err := s.activeAdminCount(projectID)
		if err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, ErrLastAdmin
		}
	}

	updates := make(map[string]interface{})
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if err := s.db.Model(&membership).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// Remove deletes a membership together with the user's role assignments in
// the project. Removing the last active admin is rejected.
func (s *MemberService) Remove(projectID, userID uint) error {
	var membership models.ProjectUser
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("membership not found")
		}
		return err
	}

	if membership.IsAdmin && membership.Status == models.MembershipActive {
		count, err := s.activeAdminCount(projectID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastAdmin
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&membership).Error
	})
}

func (s *MemberService) activeAdminCount(projectID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.ProjectUser{}).
		Where("project_id = ? AND is_admin = ? AND status = ?", projectID, true, models.MembershipActive).
		Count(&count).Error
	return count, err
}

// IsProjectAdmin reports whether the user has an active admin membership in
// the project. Used by handlers to gate project-scoped writes.
func (s *MemberService) IsProjectAdmin(projectID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProjectUser{}).
		Where("project_id = ? AND user_id = ? AND is_admin = ? AND status = ?",
			projectID, userID, true, models.MembershipActive).
		Count(&count).Error
	return count > 0, err
}
