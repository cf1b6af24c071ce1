package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

// SystemConfigHandler exposes runtime settings to global admins: LDAP,
// session lifetimes, the task calendar country and log retention.
type SystemConfigHandler struct {
	configService *services.SystemConfigService
	logService    *services.SystemLogService
	calendar      *services.CalendarService
}

func NewSystemConfigHandler(db *gorm.DB, calendar *services.CalendarService) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
		logService:    services.NewSystemLogService(db),
		calendar:      calendar,
	}
}

// GetLDAPConfig returns the LDAP settings with the bind password masked.
// GET /api/system/config/ldap
func (h *SystemConfigHandler) GetLDAPConfig(c *gin.Context) {
	response.Success(c, h.configService.GetLDAPConfig())
}

// UpdateLDAPConfig persists LDAP settings. Only supplied fields change.
// PUT /api/system/config/ldap
func (h *SystemConfigHandler) UpdateLDAPConfig(c *gin.Context) {
	var req services.UpdateLDAPConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateLDAPConfig(&req); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("system", "ldap_config_update", "LDAP configuration updated", &userID, c.ClientIP(), "", nil)
	response.Success(c, h.configService.GetLDAPConfig())
}

// GetAuthSessionConfig returns token lifetime settings.
// GET /api/system/config/auth
func (h *SystemConfigHandler) GetAuthSessionConfig(c *gin.Context) {
	response.Success(c, h.configService.GetAuthSessionConfig())
}

// UpdateAuthSessionConfig changes token lifetimes for newly issued tokens.
// PUT /api/system/config/auth
func (h *SystemConfigHandler) UpdateAuthSessionConfig(c *gin.Context) {
	var req services.UpdateAuthSessionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateAuthSessionConfig(&req); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, h.configService.GetAuthSessionConfig())
}

// GetCalendarConfig returns the active country code and the supported list.
// GET /api/system/config/calendar
func (h *SystemConfigHandler) GetCalendarConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"country":   h.configService.GetWithDefault("task_calendar_country", "US"),
		"countries": h.calendar.SupportedCountries(),
	})
}

type updateCalendarConfigRequest struct {
	Country string `json:"country" binding:"required,max=8"`
}

// UpdateCalendarConfig sets the country used for business-day due dates.
// PUT /api/system/config/calendar
func (h *SystemConfigHandler) UpdateCalendarConfig(c *gin.Context) {
	var req updateCalendarConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.Set("task_calendar_country", req.Country); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"country": req.Country})
}

// GetLogRetention returns the system log retention window in days.
// GET /api/system/config/log-retention
func (h *SystemConfigHandler) GetLogRetention(c *gin.Context) {
	response.Success(c, gin.H{"retention_days": h.logService.GetRetentionDays()})
}

type updateLogRetentionRequest struct {
	RetentionDays int `json:"retention_days" binding:"min=0,max=3650"`
}

// UpdateLogRetention sets the retention window. Zero disables cleanup.
// PUT /api/system/config/log-retention
func (h *SystemConfigHandler) UpdateLogRetention(c *gin.Context) {
	var req updateLogRetentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.logService.SetRetentionDays(req.RetentionDays); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"retention_days": req.RetentionDays})
}
