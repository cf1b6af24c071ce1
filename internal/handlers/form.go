package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

type FormHandler struct {
	formService *services.FormService
	guard       *projectGuard
}

func NewFormHandler(db *gorm.DB) *FormHandler {
	return &FormHandler{
		formService: services.NewFormService(db),
		guard:       newProjectGuard(db),
	}
}

// List returns forms, scoped to a project the caller belongs to
// GET /api/forms?project_id=N
func (h *FormHandler) List(c *gin.Context) {
	var req services.FormListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.ProjectID == nil {
		response.BadRequest(c, "project_id is required")
		return
	}
	if err := h.guard.requireMember(c, *req.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	resp, err := h.formService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetByID returns a form's definition for editing. Rendering goes through
// the view gate instead.
// GET /api/forms/:id
func (h *FormHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	form, err := h.formService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}

	if err := h.guard.requireMember(c, form.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	response.Success(c, form)
}

// Create creates a form
// POST /api/forms
func (h *FormHandler) Create(c *gin.Context) {
	var req services.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.guard.requireAdmin(c, req.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	form, err := h.formService.Create(&req, userID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, form)
}

// Update updates a form, its status or its role requirements
// PUT /api/forms/:id
func (h *FormHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	form, err := h.formService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}
	if err := h.guard.requireAdmin(c, form.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.formService.Update(uint(id), &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, updated)
}

// Delete removes a form with its requirements and submissions
// DELETE /api/forms/:id
func (h *FormHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	form, err := h.formService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}
	if err := h.guard.requireAdmin(c, form.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	if err := h.formService.Delete(uint(id)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "form deleted"})
}

// RoleRequirements lists a form's role requirements
// GET /api/forms/:id/roles
func (h *FormHandler) RoleRequirements(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	form, err := h.formService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}
	if err := h.guard.requireMember(c, form.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	requirements, err := h.formService.RoleRequirements(uint(id))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, requirements)
}
