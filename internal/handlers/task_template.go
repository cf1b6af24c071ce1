package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/models"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

// TaskTemplateHandler manages recurring task definitions. It shares the
// template service with the scheduler and worker so schedule changes take
// effect without a restart.
type TaskTemplateHandler struct {
	templateService *services.TaskTemplateService
	guard           *projectGuard
}

func NewTaskTemplateHandler(templateService *services.TaskTemplateService, db *gorm.DB) *TaskTemplateHandler {
	return &TaskTemplateHandler{
		templateService: templateService,
		guard:           newProjectGuard(db),
	}
}

// List returns a project's templates.
// GET /api/projects/:id/task-templates
func (h *TaskTemplateHandler) List(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if err := h.guard.requireMember(c, uint(projectID)); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	templates, err := h.templateService.List(uint(projectID))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, templates)
}

// Create adds a template, admin only.
// POST /api/projects/:id/task-templates
func (h *TaskTemplateHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if err := h.guard.requireAdmin(c, uint(projectID)); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.CreateTaskTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.ProjectID = uint(projectID)

	template, err := h.templateService.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("task_template", "create", template.Name, &userID, c.ClientIP(), "", gin.H{"template_id": template.ID})
	response.Created(c, template)
}

// Update modifies a template, admin only.
// PUT /api/projects/:id/task-templates/:template_id
func (h *TaskTemplateHandler) Update(c *gin.Context) {
	template, ok := h.requireTemplateAdmin(c)
	if !ok {
		return
	}

	var req services.UpdateTaskTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.templateService.Update(template.ID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, updated)
}

// Delete removes a template, admin only. Tasks already created from it
// survive with the template reference cleared.
// DELETE /api/projects/:id/task-templates/:template_id
func (h *TaskTemplateHandler) Delete(c *gin.Context) {
	template, ok := h.requireTemplateAdmin(c)
	if !ok {
		return
	}

	if err := h.templateService.Delete(template.ID); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("task_template", "delete", template.Name, &userID, c.ClientIP(), "", gin.H{"template_id": template.ID})
	response.Success(c, nil)
}

// Instantiate stamps out tasks from a template right now, outside its
// schedule. Admin only.
// POST /api/projects/:id/task-templates/:template_id/instantiate
func (h *TaskTemplateHandler) Instantiate(c *gin.Context) {
	template, ok := h.requireTemplateAdmin(c)
	if !ok {
		return
	}

	created, err := h.templateService.Instantiate(template.ID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"created": created})
}

// requireTemplateAdmin loads the template from the route, checks it belongs
// to the routed project and that the caller administers that project.
func (h *TaskTemplateHandler) requireTemplateAdmin(c *gin.Context) (*models.TaskTemplate, bool) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return nil, false
	}
	templateID, err := strconv.ParseUint(c.Param("template_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return nil, false
	}

	template, err := h.templateService.GetByID(uint(templateID))
	if err != nil || template.ProjectID != uint(projectID) {
		response.NotFound(c, "task template not found")
		return nil, false
	}
	if err := h.guard.requireAdmin(c, template.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return nil, false
	}
	return template, true
}
