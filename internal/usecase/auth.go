package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kessa99/task-manager-back/internal/auth"
	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/events"
	"github.com/kessa99/task-manager-back/internal/metrics"
	"github.com/kessa99/task-manager-back/internal/repository"
)

type AuthUsecase struct {
	users            repository.UserRepository
	revocations      repository.RevocationStore
	hasher           *auth.Hasher
	tokens           *auth.Tokens
	events           events.Publisher
	validatePassword func(string) error
	logger           *slog.Logger

	// dummyHash is compared against when the email is unknown so both
	// login failures cost one bcrypt comparison.
	dummyHash string
}

// NewAuthUsecase wires the authentication flow. revocations may be nil, in
// which case logout is a no-op and refresh skips the revocation check.
func NewAuthUsecase(
	users repository.UserRepository,
	revocations repository.RevocationStore,
	hasher *auth.Hasher,
	tokens *auth.Tokens,
	publisher events.Publisher,
	logger *slog.Logger,
	opts ...Option,
) (*AuthUsecase, error) {
	o := newOptions(opts)
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, err
	}
	return &AuthUsecase{
		users:            users,
		revocations:      revocations,
		hasher:           hasher,
		tokens:           tokens,
		events:           publisher,
		validatePassword: o.passwordPolicy,
		logger:           logger.With("component", "auth_usecase"),
		dummyHash:        dummy,
	}, nil
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
}

// Register creates an unverified account. Role defaults to MEMBER.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	addr, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := u.validatePassword(input.Password); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	if err := ensureEmailFree(ctx, u.users, addr); err != nil {
		return nil, err
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        addr,
		PasswordHash: hash,
		Verified:     false,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	publish(ctx, u.logger, u.events, events.New(events.UserRegistered, user.ID, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	}))
	return user, nil
}

// Login returns the same error for an unknown email and a wrong password.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*auth.Pair, error) {
	addr, err := domain.NormalizeEmail(emailAddr)
	if err != nil {
		u.hasher.Verify(password, u.dummyHash)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := u.users.FindByEmail(ctx, addr)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		u.hasher.Verify(password, u.dummyHash)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !u.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := u.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return pair, nil
}

// Refresh mints a new pair from a refresh token. The presented token stays
// usable until it expires or is revoked by logout.
func (u *AuthUsecase) Refresh(ctx context.Context, raw string) (*auth.Pair, error) {
	kind, ok := u.tokens.Kind(raw)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	if kind != auth.KindRefresh {
		return nil, domain.ErrInvalidTokenType
	}
	if u.tokens.IsExpired(raw) {
		return nil, domain.ErrTokenExpired
	}

	claims, err := u.tokens.ParseRefresh(raw)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, domain.ErrInvalidToken
	}

	if u.revocations != nil && claims.ID != "" {
		revoked, err := u.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, domain.ErrTokenRevoked
		}
	}

	user, err := u.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return u.tokens.IssuePair(user)
}

// CurrentUser resolves the user behind an access token.
func (u *AuthUsecase) CurrentUser(ctx context.Context, raw string) (*domain.User, error) {
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}

	kind, ok := u.tokens.Kind(raw)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	if kind != auth.KindAccess {
		return nil, domain.ErrInvalidTokenType
	}

	claims, err := u.tokens.ParseAccess(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := u.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated.WithMessage("User no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes a refresh token until its natural expiry. Tokens that are
// already expired need no revocation.
func (u *AuthUsecase) Logout(ctx context.Context, raw string) error {
	if u.revocations == nil {
		return nil
	}

	claims, err := u.tokens.ParseRefresh(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return domain.ErrInvalidToken
	}
	if claims.ID == "" {
		return domain.ErrInvalidToken
	}
	return u.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// ensureEmailFree is the business-layer uniqueness pre-check. The storage
// unique index remains the backstop under concurrency.
func ensureEmailFree(ctx context.Context, users repository.UserRepository, addr string) error {
	_, err := users.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		return domain.ErrUserAlreadyExists
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("find user by email: %w", err)
	}
}
