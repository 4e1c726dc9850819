package repository

import (
	"context"
	"time"

	"github.com/kessa99/task-manager-back/internal/domain"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
	FindByID(ctx context.Context, id string) (*domain.Invitation, error)
	FindByToken(ctx context.Context, token string) (*domain.Invitation, error)
	FindByEmail(ctx context.Context, email string) ([]*domain.Invitation, error)
	// ListPending returns invitations that are not accepted and expire after now.
	ListPending(ctx context.Context, now time.Time) ([]*domain.Invitation, error)
	// MarkAccepted flips accepted to true only if it is still false.
	// Returns domain.ErrInvitationAlreadyAccepted otherwise.
	MarkAccepted(ctx context.Context, id string) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteExpiredPending removes unaccepted rows for email+task that expired before now.
	DeleteExpiredPending(ctx context.Context, email, taskID string, now time.Time) error
	// PurgeExpired removes unaccepted rows that expired before cutoff.
	PurgeExpired(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
