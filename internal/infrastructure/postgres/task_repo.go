package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kessa99/task-manager-back/internal/domain"
)

// taskSelect reads a task with the ids of its assignees, oldest assignment first.
const taskSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority,
	       t.start_date, t.due_date, t.created_at, t.updated_at,
	       ARRAY(
	           SELECT a.user_id::text FROM assigns a
	           WHERE  a.task_id = t.id
	           ORDER BY a.created_at ASC
	       ) AS assigned_to`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	query := `
		WITH t AS (
			INSERT INTO tasks (title, description, status, priority, start_date, due_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)` + taskSelect + ` FROM t`

	row := conn(ctx, r.pool).QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.StartDate,
		t.DueDate,
	)
	return scanTask(row)
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, taskSelect+` FROM tasks t WHERE t.id = $1`, id)
	return scanTask(row)
}

func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	return r.query(ctx, taskSelect+` FROM tasks t ORDER BY t.created_at DESC, t.id DESC`)
}

func (r *TaskRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.query(ctx, taskSelect+`
		FROM tasks t
		WHERE EXISTS (SELECT 1 FROM assigns x WHERE x.task_id = t.id AND x.user_id = $1)
		ORDER BY t.created_at DESC, t.id DESC`, userID)
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	query := `
		WITH t AS (
			UPDATE tasks
			SET    title       = $2,
			       description = $3,
			       status      = $4,
			       priority    = $5,
			       start_date  = $6,
			       due_date    = $7,
			       updated_at  = NOW()
			WHERE  id = $1
			RETURNING *
		)` + taskSelect + ` FROM t`

	row := conn(ctx, r.pool).QueryRow(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.StartDate,
		t.DueDate,
	)
	return scanTask(row)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Task, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.StartDate,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.AssignedTo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}
