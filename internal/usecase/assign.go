package usecase

import (
	"context"

	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/repository"
)

type AssignUsecase struct {
	assigns repository.AssignRepository
	tasks   repository.TaskRepository
	users   repository.UserRepository
}

func NewAssignUsecase(assigns repository.AssignRepository, tasks repository.TaskRepository, users repository.UserRepository) *AssignUsecase {
	return &AssignUsecase{assigns: assigns, tasks: tasks, users: users}
}

// Create links an existing user to an existing task.
func (u *AssignUsecase) Create(ctx context.Context, taskID, userID string) (*domain.Assign, error) {
	if _, err := u.tasks.FindByID(ctx, taskID); err != nil {
		return nil, err
	}
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return u.assigns.Create(ctx, &domain.Assign{TaskID: taskID, UserID: userID})
}

func (u *AssignUsecase) Get(ctx context.Context, id string) (*domain.Assign, error) {
	return u.assigns.FindByID(ctx, id)
}

func (u *AssignUsecase) List(ctx context.Context) ([]*domain.Assign, error) {
	return u.assigns.List(ctx)
}

func (u *AssignUsecase) ListMine(ctx context.Context, caller *domain.User) ([]*domain.Assign, error) {
	return u.assigns.ListForUser(ctx, caller.ID)
}

func (u *AssignUsecase) Delete(ctx context.Context, id string) error {
	return u.assigns.Delete(ctx, id)
}
