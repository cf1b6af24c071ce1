package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

type ProjectMemberHandler struct {
	memberService *services.MemberService
	guard         *projectGuard
}

func NewProjectMemberHandler(db *gorm.DB) *ProjectMemberHandler {
	return &ProjectMemberHandler{
		memberService: services.NewMemberService(db),
		guard:         newProjectGuard(db),
	}
}

func (h *ProjectMemberHandler) projectID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return 0, false
	}
	return uint(id), true
}

// List returns a project's memberships
// GET /api/projects/:id/members
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	if err := h.guard.requireMember(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.memberService.List(projectID, &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// Add adds a member to a project
// POST /api/projects/:id/members
func (h *ProjectMemberHandler) Add(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	if err := h.guard.requireAdmin(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.memberService.Add(projectID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, membership)
}

// Update changes a member's admin flag or status
// PUT /api/projects/:id/members/:user_id
func (h *ProjectMemberHandler) Update(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.guard.requireAdmin(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.memberService.Update(projectID, uint(userID), &req)
	if err != nil {
		if errors.Is(err, services.ErrLastAdmin) {
			response.Error(c, response.NewConflict(err.Error()))
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, membership)
}

// Remove removes a member and their role assignments
// DELETE /api/projects/:id/members/:user_id
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.guard.requireAdmin(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	if err := h.memberService.Remove(projectID, uint(userID)); err != nil {
		if errors.Is(err, services.ErrLastAdmin) {
			response.Error(c, response.NewConflict(err.Error()))
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}
