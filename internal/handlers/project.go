package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	guard          *projectGuard
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
		guard:          newProjectGuard(db),
	}
}

// List returns the caller's projects; global admins see all of them
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	memberID := middleware.GetUserID(c)
	if h.guard.isGlobalAdmin(c) {
		memberID = 0
	}

	resp, err := h.projectService.List(&req, memberID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetByID returns a project by ID
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.guard.requireMember(c, uint(id)); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	project, err := h.projectService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "project not found")
		return
	}

	response.Success(c, project)
}

// Create creates a new project with the caller as first admin
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	project, err := h.projectService.Create(&req, userID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	services.LogInfo("project", "create", "project created", &userID, c.ClientIP(), "", gin.H{"project_id": project.ID})
	response.Created(c, project)
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.guard.requireAdmin(c, uint(id)); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(uint(id), &req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, project)
}

// Delete deletes a project and everything it owns
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.guard.requireAdmin(c, uint(id)); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	if err := h.projectService.Delete(uint(id)); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("project", "delete", "project deleted", &userID, c.ClientIP(), "", gin.H{"project_id": id})
	response.Success(c, gin.H{"message": "project deleted successfully"})
}
