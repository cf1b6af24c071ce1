package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/formgate/formgate/backend/internal/middleware"
	"github.com/formgate/formgate/backend/internal/services"
	"github.com/formgate/formgate/backend/pkg/response"
)

type TaskHandler struct {
	taskService *services.TaskService
	guard       *projectGuard
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		taskService: services.NewTaskService(db),
		guard:       newProjectGuard(db),
	}
}

// List returns tasks. Regular users see their own; a project admin filtering
// by project sees everyone's in that project.
// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	req := services.TaskListRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	scoped := true
	if h.guard.isGlobalAdmin(c) {
		scoped = false
	} else if req.ProjectID != nil {
		if err := h.guard.requireAdmin(c, *req.ProjectID); err == nil {
			scoped = false
		}
	}
	if scoped {
		userID := middleware.GetUserID(c)
		req.AssigneeID = &userID
	}

	result, err := h.taskService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// Get returns a single task, visible to its assignee and project admins.
// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	task, err := h.taskService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "task not found")
		return
	}

	userID := middleware.GetUserID(c)
	if task.AssigneeID != userID {
		if err := h.guard.requireAdmin(c, task.ProjectID); err != nil {
			response.Forbidden(c, err.Error())
			return
		}
	}
	response.Success(c, task)
}

type updateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=in_progress done cancelled"`
}

// UpdateStatus moves a task through its lifecycle. The assignee may progress
// their own task; project admins may also cancel or close others' tasks.
// PUT /api/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req updateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "task not found")
		return
	}

	userID := middleware.GetUserID(c)
	isAdmin := h.guard.isGlobalAdmin(c)
	if !isAdmin {
		if adminErr := h.guard.requireAdmin(c, task.ProjectID); adminErr == nil {
			isAdmin = true
		}
	}

	updated, err := h.taskService.UpdateStatus(uint(id), req.Status, userID, isAdmin)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	services.LogInfo("task", "status_change", req.Status, &userID, c.ClientIP(), "", gin.H{"task_id": id})
	response.Success(c, updated)
}

// Delete removes a task, admin only.
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	task, err := h.taskService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "task not found")
		return
	}
	if err := h.guard.requireAdmin(c, task.ProjectID); err != nil {
		response.Forbidden(c, err.Error())
		return
	}

	if err := h.taskService.Delete(uint(id)); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, nil)
}
