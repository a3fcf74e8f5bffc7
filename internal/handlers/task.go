package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/utils"
	"go.uber.org/zap"
)

const generateTimeout = 30 * time.Second

type TaskHandler struct {
	log *zap.Logger
}

func NewTaskHandler(logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		log: logger,
	}
}

// ListTasks returns the profile's tasks in stored order.
// Optional filters: status, assigned_to, q (title or description).
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{
		AssignedTo: c.Query("assigned_to"),
		Search:     c.Query("q"),
	}
	if statusStr := c.Query("status"); statusStr != "" && statusStr != "all" {
		status := models.TaskStatus(statusStr)
		if !status.Valid() {
			apierrors.InvalidStatus(c, services.ErrInvalidStatus.Error())
			return
		}
		input.Status = &status
	}

	params := utils.GetPaginationParams(c)
	tasks := ws.TaskService.ListTasks(input)
	page := utils.Paginate(tasks, params)

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page, ws.TaskService.UserNames(), params.Page, params.Limit, len(tasks)))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}

	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, ws.TaskService.UserName))
}

// CreateTask creates a new task assigned to a team member
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description" binding:"required"`
		Status      models.TaskStatus `json:"status"`
		AssignedTo  string            `json:"assignedTo" binding:"required"`
	}

	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := ws.TaskService.CreateTask(user, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, ws.TaskService.UserName))
}

// UpdateTaskStatus moves a task to a new status. Allowed for team leads and the assignee.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := ws.TaskService.UpdateStatus(user, c.Param("id"), req.Status)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, ws.TaskService.UserName))
}

// DeleteTask removes a task immediately
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := ws.TaskService.DeleteTask(user, c.Param("id")); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// GetStats returns the dashboard counters for the current user
func (h *TaskHandler) GetStats(c *gin.Context) {
	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, ws.TaskService.Stats(user))
}

// GenerateTasks drafts tasks from free text using AI. Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	drafts, err := ws.TaskService.GenerateTasks(ctx, user, req.Text)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
		"count": len(drafts),
	})
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotTeamLead):
		apierrors.Forbidden(c, apierrors.ErrCodeTeamLeadOnly, err.Error())
	case errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, apierrors.ErrCodeNotTaskAssignee, err.Error())
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.InvalidStatus(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrAssigneeRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.RespondWithError(c, http.StatusUnprocessableEntity,
			apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, err.Error()))
	default:
		h.log.Error("task request failed", zap.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}
