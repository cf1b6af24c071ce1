package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

type RoleHandler struct {
	roleService *services.RoleService
	guard       *projectGuard
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{
		roleService: services.NewRoleService(db),
		guard:       newProjectGuard(db),
	}
}

func (h *RoleHandler) ids(c *gin.Context) (projectID, roleID uint, ok bool) {
	pid, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return 0, 0, false
	}
	rid, err := strconv.ParseUint(c.Param("role_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return 0, 0, false
	}
	return uint(pid), uint(rid), true
}

// List returns a project's roles
// GET /api/projects/:id/roles
func (h *RoleHandler) List(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if err := h.guard.requireMember(c, uint(projectID)); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	roles, err := h.roleService.List(uint(projectID))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, roles)
}

// Create creates a role in a project
// POST /api/projects/:id/roles
func (h *RoleHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if err := h.guard.requireAdmin(c, uint(projectID)); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(uint(projectID), &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, role)
}

// Update renames a role
// PUT /api/projects/:id/roles/:role_id
func (h *RoleHandler) Update(c *gin.Context) {
	projectID, roleID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.guard.requireAdmin(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Update(projectID, roleID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, role)
}

// Delete removes a role, its assignments and form requirements
// DELETE /api/projects/:id/roles/:role_id
func (h *RoleHandler) Delete(c *gin.Context) {
	projectID, roleID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.guard.requireAdmin(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	if err := h.roleService.Delete(projectID, roleID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "role deleted"})
}

// Assign grants a role to a member
// POST /api/projects/:id/roles/:role_id/assignments
func (h *RoleHandler) Assign(c *gin.Context) {
	projectID, roleID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.guard.requireAdmin(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	assignment, err := h.roleService.Assign(projectID, roleID, &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, assignment)
}

// Unassign revokes a role from a member
// DELETE /api/projects/:id/roles/:role_id/assignments/:user_id
func (h *RoleHandler) Unassign(c *gin.Context) {
	projectID, roleID, ok := h.ids(c)
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

	if err := h.roleService.Unassign(projectID, roleID, uint(userID)); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "role unassigned"})
}

// Holders lists the users holding a role
// GET /api/projects/:id/roles/:role_id/assignments
func (h *RoleHandler) Holders(c *gin.Context) {
	projectID, roleID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.guard.requireMember(c, projectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	holders, err := h.roleService.Holders(projectID, roleID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, holders)
}
