package usecase

import (
	"context"
	"time"

	"github.com/kessa99/task-manager-back/internal/domain"
	"github.com/kessa99/task-manager-back/internal/repository"
)

type TaskUsecase struct {
	tasks repository.TaskRepository
}

func NewTaskUsecase(tasks repository.TaskRepository) *TaskUsecase {
	return &TaskUsecase{tasks: tasks}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	StartDate   *time.Time
	DueDate     *time.Time
}

func (u *TaskUsecase) Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	if input.Status == "" {
		input.Status = domain.TaskTodo
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}

	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
	}
	if err := task.CheckDates(); err != nil {
		return nil, err
	}
	return u.tasks.Create(ctx, task)
}

// Get returns the task if the caller may see it.
func (u *TaskUsecase) Get(ctx context.Context, caller *domain.User, id string) (*domain.Task, error) {
	task, err := u.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CanViewTask(caller, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns every task to an owner and the assigned ones to a member.
func (u *TaskUsecase) List(ctx context.Context, caller *domain.User) ([]*domain.Task, error) {
	if caller.Role == domain.RoleOwner {
		return u.tasks.List(ctx)
	}
	return u.tasks.ListForUser(ctx, caller.ID)
}

func (u *TaskUsecase) ListForUser(ctx context.Context, caller *domain.User, userID string) ([]*domain.Task, error) {
	if err := domain.CanActFor(caller, userID); err != nil {
		return nil, err
	}
	return u.tasks.ListForUser(ctx, userID)
}

// UpdateTaskInput carries only the fields to change.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	StartDate   *time.Time
	DueDate     *time.Time
}

func (u *TaskUsecase) Update(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error) {
	task, err := u.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.StartDate != nil {
		task.StartDate = input.StartDate
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if err := task.CheckDates(); err != nil {
		return nil, err
	}
	return u.tasks.Update(ctx, task)
}

func (u *TaskUsecase) Delete(ctx context.Context, id string) error {
	return u.tasks.Delete(ctx, id)
}
