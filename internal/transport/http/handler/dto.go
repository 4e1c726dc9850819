package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kessa99/task-manager-back/internal/domain"
)

type userResponse struct {
	ID        string      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Verified  bool        `json:"verified"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Verified:  u.Verified,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type taskResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	StartDate   *time.Time          `json:"start_date"`
	DueDate     *time.Time          `json:"due_date"`
	AssignedTo  []string            `json:"assigned_to"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	assigned := t.AssignedTo
	if assigned == nil {
		assigned = []string{}
	}
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		AssignedTo:  assigned,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type assignResponse struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}

func toAssignResponse(a *domain.Assign) assignResponse {
	return assignResponse{ID: a.ID, TaskID: a.TaskID, UserID: a.UserID}
}

type invitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	TaskID    string    `json:"task_id"`
	InvitedBy string    `json:"invited_by"`
	Accepted  bool      `json:"accepted"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toInvitationResponse(i *domain.Invitation) invitationResponse {
	return invitationResponse{
		ID:        i.ID,
		Email:     i.Email,
		TaskID:    i.TaskID,
		InvitedBy: i.InvitedBy,
		Accepted:  i.Accepted,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

// invitationDetailResponse never carries the token.
type invitationDetailResponse struct {
	invitationResponse
	TaskTitle   string `json:"task_title"`
	InviterName string `json:"inviter_name"`
	Valid       bool   `json:"valid"`
}

func toInvitationDetailResponse(d *domain.InvitationDetail) invitationDetailResponse {
	return invitationDetailResponse{
		invitationResponse: toInvitationResponse(&d.Invitation),
		TaskTitle:          d.TaskTitle,
		InviterName:        d.InviterName,
		Valid:              d.Valid,
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

// idParam reads a uuid path parameter. Anything that is not a uuid cannot
// name an existing row, so it is reported with the resource's not-found error.
func idParam(c *gin.Context, name string, notFound *domain.Error) (string, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", notFound
	}
	return id.String(), nil
}
