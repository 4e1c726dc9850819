package repository

import (
	"context"

	"github.com/kessa99/task-manager-back/internal/domain"
)

// UseCase depends on these interfaces, not on the postgres adapters, so tests
// can pass in-memory fakes.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	SetVerified(ctx context.Context, id string) (*domain.User, error)
}
