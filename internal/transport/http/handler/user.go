package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
)

type userUsecaser interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Verify(ctx context.Context, id string) (*domain.User, error)
}

type UserHandler struct {
	users  userUsecaser
	logger *slog.Logger
}

func NewUserHandler(users userUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("component", "user_handler")}
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, mapSlice(users, toUserResponse), "")
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrUserNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserResponse(user), "")
}

// POST /api/users/:id/verify
func (h *UserHandler) Verify(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrUserNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	user, err := h.users.Verify(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, toUserResponse(user), "User verified")
}
