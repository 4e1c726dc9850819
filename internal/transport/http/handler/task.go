package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/transport/http/middleware"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
	"github.com/kessa99/task-manager-back/internal/usecase"
)

type taskUsecaser interface {
	Create(ctx context.Context, input usecase.CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, caller *domain.User, id string) (*domain.Task, error)
	List(ctx context.Context, caller *domain.User) ([]*domain.Task, error)
	ListForUser(ctx context.Context, caller *domain.User, userID string) ([]*domain.Task, error)
	Update(ctx context.Context, id string, input usecase.UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type TaskHandler struct {
	tasks  taskUsecaser
	logger *slog.Logger
}

func NewTaskHandler(tasks taskUsecaser, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger.With("component", "task_handler")}
}

type createTaskRequest struct {
	Title       string              `json:"title"       binding:"required,max=255"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"      binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    domain.TaskPriority `json:"priority"    binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   *time.Time          `json:"start_date"`
	DueDate     *time.Time          `json:"due_date"`
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, http.StatusCreated, toTaskResponse(task), "Task created")
}

// GET /api/tasks
// Owners see every task, members only the ones assigned to them.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, mapSlice(tasks, toTaskResponse), "")
}

// GET /api/tasks/my
func (h *TaskHandler) ListMine(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	tasks, err := h.tasks.ListForUser(c.Request.Context(), caller, caller.ID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, mapSlice(tasks, toTaskResponse), "")
}

// GET /api/tasks/user/:user_id
func (h *TaskHandler) ListForUser(c *gin.Context) {
	userID, err := idParam(c, "user_id", domain.ErrUserNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	tasks, err := h.tasks.ListForUser(c.Request.Context(), middleware.CurrentUser(c), userID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, mapSlice(tasks, toTaskResponse), "")
}

// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrTaskNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, toTaskResponse(task), "")
}

type updateTaskRequest struct {
	Title       *string              `json:"title"       binding:"omitempty,min=1,max=255"`
	Description *string              `json:"description"`
	Status      *domain.TaskStatus   `json:"status"      binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *domain.TaskPriority `json:"priority"    binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   *time.Time           `json:"start_date"`
	DueDate     *time.Time           `json:"due_date"`
}

// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrTaskNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), id, usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, toTaskResponse(task), "Task updated")
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrTaskNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
