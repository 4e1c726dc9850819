package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/transport/http/middleware"
	"github.com/kessa99/task-manager-back/internal/transport/http/response"
	"github.com/kessa99/task-manager-back/internal/usecase"
)

const codeResendFailed = "INVITATION_RESEND_FAILED"

type invitationUsecaser interface {
	Create(ctx context.Context, input usecase.CreateInvitationInput) (*domain.Invitation, error)
	Check(ctx context.Context, token string) (*domain.InvitationDetail, error)
	Accept(ctx context.Context, input usecase.AcceptInvitationInput) (*auth.Pair, error)
	ListPending(ctx context.Context) ([]*domain.InvitationDetail, error)
	Get(ctx context.Context, id string) (*domain.InvitationDetail, error)
	Cancel(ctx context.Context, id string) (bool, error)
	Resend(ctx context.Context, id string, inviter *domain.User) (bool, error)
}

type InvitationHandler struct {
	invitations invitationUsecaser
	logger      *slog.Logger
}

func NewInvitationHandler(invitations invitationUsecaser, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		logger:      logger.With("component", "invitation_handler"),
	}
}

type createInvitationRequest struct {
	Email  string `json:"email"`
	TaskID string `json:"task_id" binding:"required,uuid"`
}

// POST /api/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	inv, err := h.invitations.Create(c.Request.Context(), usecase.CreateInvitationInput{
		Email:   req.Email,
		TaskID:  req.TaskID,
		Inviter: middleware.CurrentUser(c),
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, http.StatusCreated, toInvitationResponse(inv), "Invitation sent")
}

// GET /api/invitations
func (h *InvitationHandler) ListPending(c *gin.Context) {
	details, err := h.invitations.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, http.StatusOK, mapSlice(details, toInvitationDetailResponse), "")
}

// GET /api/invitations/check/:token
// Public: the frontend calls it before showing the acceptance form.
func (h *InvitationHandler) Check(c *gin.Context) {
	detail, err := h.invitations.Check(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, http.StatusOK, toInvitationDetailResponse(detail), "")
}

type acceptInvitationRequest struct {
	Token     string `json:"token"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"required,max=100"`
	Password  string `json:"password"`
}

// POST /api/invitations/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	pair, err := h.invitations.Accept(c.Request.Context(), usecase.AcceptInvitationInput{
		Token:     req.Token,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, http.StatusOK, pair, "Invitation accepted")
}

// GET /api/invitations/:id
func (h *InvitationHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrInvitationNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	detail, err := h.invitations.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, http.StatusOK, toInvitationDetailResponse(detail), "")
}

// DELETE /api/invitations/:id
func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrInvitationNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	deleted, err := h.invitations.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if !deleted {
		response.Error(c, h.logger, domain.ErrInvitationNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

// POST /api/invitations/:id/resend
// The same token and expiry are mailed again.
func (h *InvitationHandler) Resend(c *gin.Context) {
	id, err := idParam(c, "id", domain.ErrInvitationNotFound)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	sent, err := h.invitations.Resend(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if !sent {
		const msg = "Invitation cannot be resent: it does not exist, was accepted, or its task was deleted"
		response.Fail(c, http.StatusBadRequest, msg, response.ErrorEntry{Message: msg, Code: codeResendFailed})
		return
	}

	response.OK(c, http.StatusOK, nil, "Invitation resent")
}
