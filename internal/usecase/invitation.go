package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/email"
	"github.com/kessa99/task-manager-back/internal/events"
	"github.com/kessa99/task-manager-back/internal/metrics"
	"github.com/kessa99/task-manager-back/internal/repository"
)

const invitationTokenBytes = 32

type InvitationDeps struct {
	Invitations repository.InvitationRepository
	Users       repository.UserRepository
	Tasks       repository.TaskRepository
	Assigns     repository.AssignRepository
	Tx          repository.TxManager
	Hasher      *auth.Hasher
	Tokens      *auth.Tokens
	Notifier    Notifier
	Events      events.Publisher
	// TTL defaults to domain.DefaultInvitationTTL.
	TTL time.Duration
}

type InvitationUsecase struct {
	deps             InvitationDeps
	now              func() time.Time
	validatePassword func(string) error
	logger           *slog.Logger
}

func NewInvitationUsecase(deps InvitationDeps, logger *slog.Logger, opts ...Option) *InvitationUsecase {
	o := newOptions(opts)
	if deps.TTL <= 0 {
		deps.TTL = domain.DefaultInvitationTTL
	}
	return &InvitationUsecase{
		deps:             deps,
		now:              o.now,
		validatePassword: o.passwordPolicy,
		logger:           logger.With("component", "invitation_usecase"),
	}
}

type CreateInvitationInput struct {
	Email   string
	TaskID  string
	Inviter *domain.User
}

// Create offers membership of a task to an email that has no account yet.
func (u *InvitationUsecase) Create(ctx context.Context, input CreateInvitationInput) (*domain.Invitation, error) {
	addr, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	task, err := u.deps.Tasks.FindByID(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}

	if err := ensureEmailFree(ctx, u.deps.Users, addr); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists.WithMessage("A user with this email already exists. Assign them to the task directly.")
		}
		return nil, err
	}

	now := u.now()
	existing, err := u.deps.Invitations.FindByEmail(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("find invitations: %w", err)
	}
	for _, inv := range existing {
		if inv.TaskID == task.ID && inv.IsValid(now) {
			return nil, domain.ErrInvitationAlreadyExists
		}
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}

	var created *domain.Invitation
	err = u.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		// A lapsed invitation for the same pair would collide with the
		// pending unique index; it can never be accepted anyway.
		if err := u.deps.Invitations.DeleteExpiredPending(ctx, addr, task.ID, now); err != nil {
			return err
		}
		created, err = u.deps.Invitations.Create(ctx, &domain.Invitation{
			Email:     addr,
			TaskID:    task.ID,
			Token:     token,
			InvitedBy: input.Inviter.ID,
			ExpiresAt: now.Add(u.deps.TTL),
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitationsCreatedTotal.Inc()
	u.logger.InfoContext(ctx, "invitation created", "invitation_id", created.ID, "task_id", task.ID)

	notify(ctx, u.logger, "invitation", func() error {
		return u.deps.Notifier.SendInvitation(ctx, email.Invitation{
			To:          created.Email,
			InviterName: input.Inviter.DisplayName(),
			TaskTitle:   task.Title,
			Token:       created.Token,
		})
	})
	publish(ctx, u.logger, u.deps.Events, events.New(events.InvitationCreated, created.ID, map[string]any{
		"invitation_id": created.ID,
		"email":         created.Email,
		"task_id":       created.TaskID,
		"invited_by":    created.InvitedBy,
		"expires_at":    created.ExpiresAt,
	}))
	return created, nil
}

// Check returns the invitation behind a token whatever its state; the
// detail's Valid flag says whether it can still be accepted.
func (u *InvitationUsecase) Check(ctx context.Context, token string) (*domain.InvitationDetail, error) {
	if err := domain.ValidateInvitationToken(token); err != nil {
		return nil, err
	}
	inv, err := u.deps.Invitations.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return u.detail(ctx, inv)
}

type AcceptInvitationInput struct {
	Token     string
	FirstName string
	LastName  string
	Password  string
}

// Accept turns a valid invitation into a verified MEMBER account assigned to
// the invitation's task, and signs the new user in.
func (u *InvitationUsecase) Accept(ctx context.Context, input AcceptInvitationInput) (*auth.Pair, error) {
	if err := domain.ValidateInvitationToken(input.Token); err != nil {
		return nil, err
	}

	inv, err := u.deps.Invitations.FindByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	// Accepted is checked first so a reused link gets the more specific error.
	if inv.Accepted {
		return nil, domain.ErrInvitationAlreadyAccepted
	}
	if inv.IsExpired(u.now()) {
		return nil, domain.ErrInvitationExpired
	}
	if err := ensureEmailFree(ctx, u.deps.Users, inv.Email); err != nil {
		return nil, err
	}
	if err := u.validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := u.deps.Hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = u.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = u.deps.Users.Create(ctx, &domain.User{
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Email:        inv.Email,
			PasswordHash: hash,
			Verified:     true,
			Role:         domain.RoleMember,
		})
		if err != nil {
			return err
		}
		if _, err := u.deps.Assigns.Create(ctx, &domain.Assign{TaskID: inv.TaskID, UserID: user.ID}); err != nil {
			return fmt.Errorf("assign invited user: %w", err)
		}
		// Guarded on accepted = false: a concurrent acceptance loses here
		// and its user and assignment roll back.
		return u.deps.Invitations.MarkAccepted(ctx, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitationsAcceptedTotal.Inc()
	u.logger.InfoContext(ctx, "invitation accepted", "invitation_id", inv.ID, "user_id", user.ID)

	notify(ctx, u.logger, "welcome", func() error {
		return u.deps.Notifier.SendWelcome(ctx, user.Email, user.FirstName)
	})
	publish(ctx, u.logger, u.deps.Events, events.New(events.InvitationAccepted, inv.ID, map[string]any{
		"invitation_id": inv.ID,
		"user_id":       user.ID,
		"task_id":       inv.TaskID,
	}))

	return u.deps.Tokens.IssuePair(user)
}

// ListPending returns every invitation that can still be accepted.
func (u *InvitationUsecase) ListPending(ctx context.Context) ([]*domain.InvitationDetail, error) {
	invs, err := u.deps.Invitations.ListPending(ctx, u.now())
	if err != nil {
		return nil, err
	}
	out := make([]*domain.InvitationDetail, 0, len(invs))
	for _, inv := range invs {
		d, err := u.detail(ctx, inv)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (u *InvitationUsecase) Get(ctx context.Context, id string) (*domain.InvitationDetail, error) {
	inv, err := u.deps.Invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.detail(ctx, inv)
}

// Cancel deletes the invitation whatever its state. It reports false when
// there was nothing to delete.
func (u *InvitationUsecase) Cancel(ctx context.Context, id string) (bool, error) {
	deleted, err := u.deps.Invitations.Delete(ctx, id)
	if err != nil || !deleted {
		return false, err
	}
	u.logger.InfoContext(ctx, "invitation cancelled", "invitation_id", id)
	publish(ctx, u.logger, u.deps.Events, events.New(events.InvitationCancelled, id, map[string]any{
		"invitation_id": id,
	}))
	return true, nil
}

// Resend emails the existing link again without touching token or expiry.
// It reports false when the invitation is missing, already accepted, or its
// task is gone. A failed delivery is logged and still reports true.
func (u *InvitationUsecase) Resend(ctx context.Context, id string, inviter *domain.User) (bool, error) {
	inv, err := u.deps.Invitations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return false, nil
		}
		return false, err
	}
	if inv.Accepted {
		return false, nil
	}

	task, err := u.deps.Tasks.FindByID(ctx, inv.TaskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return false, nil
		}
		return false, err
	}

	notify(ctx, u.logger, "invitation", func() error {
		return u.deps.Notifier.SendInvitation(ctx, email.Invitation{
			To:          inv.Email,
			InviterName: inviter.DisplayName(),
			TaskTitle:   task.Title,
			Token:       inv.Token,
		})
	})
	return true, nil
}

// detail resolves the task title and inviter name. A reference that no
// longer resolves gets a placeholder label instead of failing.
func (u *InvitationUsecase) detail(ctx context.Context, inv *domain.Invitation) (*domain.InvitationDetail, error) {
	d := &domain.InvitationDetail{
		Invitation:  *inv,
		TaskTitle:   domain.DeletedTaskLabel,
		InviterName: domain.DeletedUserLabel,
		Valid:       inv.IsValid(u.now()),
	}

	task, err := u.deps.Tasks.FindByID(ctx, inv.TaskID)
	switch {
	case err == nil:
		d.TaskTitle = task.Title
	case !errors.Is(err, domain.ErrTaskNotFound):
		return nil, err
	}

	inviter, err := u.deps.Users.FindByID(ctx, inv.InvitedBy)
	switch {
	case err == nil:
		d.InviterName = inviter.DisplayName()
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	return d, nil
}

// newInvitationToken returns 32 random bytes, URL-safe encoded without padding.
func newInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
