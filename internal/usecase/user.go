package usecase

import (
	"context"

	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/repository"
)

type UserUsecase struct {
	users repository.UserRepository
}

func NewUserUsecase(users repository.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

func (u *UserUsecase) List(ctx context.Context) ([]*domain.User, error) {
	return u.users.List(ctx)
}

func (u *UserUsecase) Get(ctx context.Context, id string) (*domain.User, error) {
	return u.users.FindByID(ctx, id)
}

// Verify marks the account as verified. Verifying twice is harmless.
func (u *UserUsecase) Verify(ctx context.Context, id string) (*domain.User, error) {
	return u.users.SetVerified(ctx, id)
}
