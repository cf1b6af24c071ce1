package access

import (
	"context"
	"errors"

	"github.com/formgate/formgate/backend/internal/models"
	"gorm.io/gorm"
)

// Store provides the relation reads the resolver needs. Absent rows are
// reported as (nil, nil) or an empty slice, never as an error; errors are
// reserved for infrastructure failures.
type Store interface {
	// FetchForm returns the form with the given ID, or nil if absent.
	FetchForm(ctx context.Context, formID uint) (*models.Form, error)
	// FetchGlobalRole returns the caller's global role flag.
	FetchGlobalRole(ctx context.Context, userID uint) (string, error)
	// FetchMembership returns the caller's membership row in the project, or
	// nil if absent. The row carries its status; the resolver decides whether
	// a non-active membership counts.
	FetchMembership(ctx context.Context, projectID, userID uint) (*models.ProjectUser, error)
	// FetchFormRoleRequirements returns the role IDs required by the form.
	FetchFormRoleRequirements(ctx context.Context, formID uint) ([]uint, error)
	// FetchUserRoleAssignments returns the role IDs the caller holds within
	// the project. Assignments in other projects must not leak in.
	FetchUserRoleAssignments(ctx context.Context, projectID, userID uint) ([]uint, error)
}

// GormStore implements Store against the portal database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FetchForm(ctx context.Context, formID uint) (*models.Form, error) {
	var form models.Form
	err := s.db.WithContext(ctx).First(&form, formID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (s *GormStore) FetchGlobalRole(ctx context.Context, userID uint) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *GormStore) FetchMembership(ctx context.Context, projectID, userID uint) (*models.ProjectUser, error) {
	var membership models.ProjectUser
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (s *GormStore) FetchFormRoleRequirements(ctx context.Context, formID uint) ([]uint, error) {
	var roleIDs []uint
	err := s.db.WithContext(ctx).
		Model(&models.FormRole{}).
		Where("form_id = ?", formID).
		Pluck("role_id", &roleIDs).Error
	if err != nil {
		return nil, err
	}
	return roleIDs, nil
}

func (s *GormStore) FetchUserRoleAssignments(ctx context.Context, projectID, userID uint) ([]uint, error) {
	var roleIDs []uint
	err := s.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Pluck("role_id", &roleIDs).Error
	if err != nil {
		return nil, err
	}
	return roleIDs, nil
}
