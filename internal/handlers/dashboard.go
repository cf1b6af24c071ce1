package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	guard            *projectGuard
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db),
		guard:            newProjectGuard(db),
	}
}

// GetStats returns aggregate counts and leaderboards for the landing page.
// Project-scoped stats require membership in that project.
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	var req services.DashboardStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.ProjectID != nil {
		if err := h.guard.requireMember(c, *req.ProjectID); err != nil {
			response.Forbidden(c, err.Error())
			return
		}
	}

	stats, err := h.dashboardService.GetStats(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, stats)
}
