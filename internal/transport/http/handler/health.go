package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/health"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
)

type readinessChecker interface {
	Readiness(ctx context.Context) health.HealthResult
}

type HealthHandler struct {
	checker readinessChecker
}

func NewHealthHandler(checker readinessChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	result := h.checker.Readiness(c.Request.Context())
	if result.Status != health.StatusUp {
		msg := "Service unavailable"
		c.JSON(http.StatusServiceUnavailable, response.Envelope{
			Data:    result,
			Message: &msg,
			Errors:  []response.ErrorEntry{{Message: msg, Code: "SERVICE_UNAVAILABLE"}},
		})
		return
	}
	response.OK(c, http.StatusOK, result, "")
}
