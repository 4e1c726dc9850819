package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/transport/http/middleware"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
)

type assignUsecaser interface {
	Create(ctx context.Context, taskID, userID string) (*domain.Assign, error)
	Get(ctx context.Context, id string) (*domain.Assign, error)
	List(ctx context.Context) ([]*domain.Assign, error)
	ListMine(ctx context.Context, caller *domain.User) ([]*domain.Assign, error)
	Delete(ctx context.Context, id string) error
}

type AssignHandler struct {
	assigns assignUsecaser
	logger  *slog.Logger
}

func NewAssignHandler(assigns assignUsecaser, logger *slog.Logger) *AssignHandler {
	return &AssignHandler{assigns: assigns, logger: logger.With("component", "assign_handler")}
}

type createAssignRequest struct {
	TaskID string `json:"task_id" binding:"required,uuid"`
	UserID string `json:"user_id" binding:"required,uuid"`
}

// POST /api/assignments
func (h *AssignHandler) Create(c *gin.Context) {
	var req createAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	a, err := h.assigns.Create(c.Request.Context(), req.TaskID, req.UserID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusCreated, toAssignResponse(a), "User assigned to task")
}

// GET /api/assignments
func (h *AssignHandler) List(c *gin.Context) {
	assigns, err := h.assigns.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, mapSlice(assigns, toAssignResponse), "")
}

// GET /api/assignments/my
func (h *AssignHandler) ListMine(c *gin.Context) {
	assigns, err := h.assigns.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, mapSlice(assigns, toAssignResponse), "")
}

// GET /api/assignments/:id
func (h *AssignHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrAssignmentNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	a, err := h.assigns.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, toAssignResponse(a), "")
}

// DELETE /api/assignments/:id
func (h *AssignHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrAssignmentNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if err := h.assigns.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
