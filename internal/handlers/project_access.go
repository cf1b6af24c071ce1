package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/models"
	"github.com/formgate/formgate/backend/internal/services"
)

// projectGuard centralizes the read-for-members / write-for-admins checks
// used by all project-scoped handlers. Global admins pass every check.
type projectGuard struct {
	memberService *services.MemberService
	db            *gorm.DB
}

func newProjectGuard(db *gorm.DB) *projectGuard {
	return &projectGuard{
		memberService: services.NewMemberService(db),
		db:            db,
	}
}

func (g *projectGuard) isGlobalAdmin(c *gin.Context) bool {
	return middleware.GetRole(c) == models.GlobalRoleAdmin
}

// requireMember returns nil when the caller has an active membership in the
// project (or is a global admin).
func (g *projectGuard) requireMember(c *gin.Context, projectID uint) error {
	if g.isGlobalAdmin(c) {
		return nil
	}

	userID := middleware.GetUserID(c)
	var count int64
	err := g.db.Model(&models.ProjectUser{}).
		Where("project_id = ? AND user_id = ? AND status = ?", projectID, userID, models.MembershipActive).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("not a member of this project")
	}
	return nil
}

// requireAdmin returns nil when the caller administers the project (or is a
// global admin).
func (g *projectGuard) requireAdmin(c *gin.Context, projectID uint) error {
	if g.isGlobalAdmin(c) {
		return nil
	}

	userID := middleware.GetUserID(c)
	isAdmin, err := g.memberService.IsProjectAdmin(projectID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return errors.New("project admin rights required")
	}
	return nil
}
