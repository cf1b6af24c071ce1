package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/models"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

// PublicFormHandler serves unauthenticated access to public forms. Forms are
// looked up by their opaque token only; numeric IDs are never exposed here.
type PublicFormHandler struct {
	formService       *services.FormService
	submissionService *services.SubmissionService
}

func NewPublicFormHandler(db *gorm.DB) *PublicFormHandler {
	return &PublicFormHandler{
		formService:       services.NewFormService(db),
		submissionService: services.NewSubmissionService(db),
	}
}

// Get returns a public form by token.
// GET /api/public/forms/:token
func (h *PublicFormHandler) Get(c *gin.Context) {
	form, err := h.formService.GetByPublicToken(c.Param("token"))
	if err != nil {
		// Unknown token and private form look the same from outside.
		response.NotFound(c, "form not found")
		return
	}

	response.Success(c, gin.H{
		"form":     form,
		"fillable": form.Status == models.FormStatusActive,
	})
}

// Submit records an anonymous submission against a public form.
// POST /api/public/forms/:token/submissions
func (h *PublicFormHandler) Submit(c *gin.Context) {
	form, err := h.formService.GetByPublicToken(c.Param("token"))
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	submission, err := h.submissionService.Create(form, nil, req.Data, c.ClientIP())
	if err != nil {
		if err == services.ErrFormNotFillable {
			response.Error(c, response.NewConflict(err.Error()))
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, submission)
}
