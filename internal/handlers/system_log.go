package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

type SystemLogHandler struct {
	logService *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{logService: services.NewSystemLogService(db)}
}

// List returns audit log entries with optional filters.
// GET /api/system/logs
func (h *SystemLogHandler) List(c *gin.Context) {
	req := services.SystemLogListRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// GetModules returns the distinct module names seen in the log, for filter
// dropdowns.
// GET /api/system/logs/modules
func (h *SystemLogHandler) GetModules(c *gin.Context) {
	modules, err := h.logService.GetModules()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, modules)
}

// Cleanup deletes entries older than the configured retention window.
// POST /api/system/logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	deleted, err := h.logService.CleanupOldLogs(h.logService.GetRetentionDays())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("system", "log_cleanup", "manual log cleanup", &userID, c.ClientIP(), "", gin.H{"deleted": deleted})
	response.Success(c, gin.H{"deleted": deleted})
}
