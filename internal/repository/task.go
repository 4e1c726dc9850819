package repository

import (
	"context"

	"github.com/kessa99/task-manager-back/internal/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type AssignRepository interface {
	Create(ctx context.Context, a *domain.Assign) (*domain.Assign, error)
	FindByID(ctx context.Context, id string) (*domain.Assign, error)
	List(ctx context.Context) ([]*domain.Assign, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Assign, error)
	Delete(ctx context.Context, id string) error
}
