package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/access"
	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/models"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/logger"
	"github.com/formgate/formgate/backend/pkg/response"
)

// FormAccessHandler serves the form view gate: the single endpoint the
// frontend calls before rendering any form.
type FormAccessHandler struct {
	resolver          *access.Resolver
	submissionService *services.SubmissionService
}

func NewFormAccessHandler(db *gorm.DB) *FormAccessHandler {
	return &FormAccessHandler{
		resolver:          access.NewResolver(access.NewGormStore(db)),
		submissionService: services.NewSubmissionService(db),
	}
}

// View resolves the caller's access to a form and tells the frontend how to
// proceed: render, redirect to the public path, or show a denial.
// GET /api/forms/:id/view
func (h *FormAccessHandler) View(c *gin.Context) {
	formID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	userID := middleware.GetUserID(c)
	decision, err := h.resolver.Resolve(c.Request.Context(), userID, uint(formID))
	if err != nil {
		// Relation store failure: the rules never said no, so this must not
		// read as a denial.
		logger.Errorf("form access resolution failed: %v", err)
		response.Unavailable(c, "access check temporarily unavailable, please retry")
		return
	}

	switch decision.Outcome {
	case access.OutcomeNotFound:
		response.NotFound(c, "form not found")

	case access.OutcomeRedirectPublic:
		c.JSON(http.StatusOK, response.Response{
			Code:    0,
			Message: "ok",
			Data: gin.H{
				"access":   "redirect_public",
				"redirect": "/public/forms/" + decision.Form.PublicToken,
			},
		})

	case access.OutcomeGranted:
		c.JSON(http.StatusOK, response.Response{
			Code:    0,
			Message: "ok",
			Data: gin.H{
				"access":   "granted",
				"reason":   decision.Reason,
				"fillable": decision.Form.Status == models.FormStatusActive,
				"form":     decision.Form,
			},
		})

	case access.OutcomeDenied:
		services.LogInfo("access", "form_view_denied", string(decision.Reason), &userID, c.ClientIP(), "", gin.H{"form_id": formID})
		c.JSON(http.StatusForbidden, response.Response{
			Code:    403,
			Message: "access denied",
			Data: gin.H{
				"access": "denied",
				"reason": decision.Reason,
			},
		})
	}
}

type submitRequest struct {
	Data string `json:"data" binding:"required"`
}

// Submit records a submission after re-running the access gate. The gate
// decides who may see the form; the form's status decides whether it accepts
// submissions right now.
// POST /api/forms/:id/submissions
func (h *FormAccessHandler) Submit(c *gin.Context) {
	formID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}

	userID := middleware.GetUserID(c)
	decision, err := h.resolver.Resolve(c.Request.Context(), userID, uint(formID))
	if err != nil {
		logger.Errorf("form access resolution failed: %v", err)
		response.Unavailable(c, "access check temporarily unavailable, please retry")
		return
	}

	switch decision.Outcome {
	case access.OutcomeNotFound:
		response.NotFound(c, "form not found")
		return
	case access.OutcomeRedirectPublic:
		response.BadRequest(c, "public forms accept submissions on the public path")
		return
	case access.OutcomeDenied:
		c.JSON(http.StatusForbidden, response.Response{
			Code:    403,
			Message: "access denied",
			Data:    gin.H{"access": "denied", "reason": decision.Reason},
		})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	submission, err := h.submissionService.Create(decision.Form, &userID, req.Data, c.ClientIP())
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
