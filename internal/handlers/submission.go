package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

// SubmissionHandler lets project admins review what was submitted.
type SubmissionHandler struct {
	submissionService *services.SubmissionService
	formService       *services.FormService
	guard             *projectGuard
}

func NewSubmissionHandler(db *gorm.DB) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: services.NewSubmissionService(db),
		formService:       services.NewFormService(db),
		guard:             newProjectGuard(db),
	}
}

// List returns submissions for one form, admin only.
// GET /api/forms/:id/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	formID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	form, err := h.formService.GetByID(uint(formID))
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}
	if err := h.guard.requireAdmin(c, form.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	req := services.SubmissionListRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fid := uint(formID)
	req.FormID = &fid

	result, err := h.submissionService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// Get returns a single submission, admin only.
// GET /api/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid submission id")
		return
	}

	submission, err := h.submissionService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "submission not found")
		return
	}

	form, err := h.formService.GetByID(submission.FormID)
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}
	if err := h.guard.requireAdmin(c, form.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	response.Success(c, submission)
}
