package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kessa99/task-manager-back/internal/domain"
)

const assignColumns = `id, task_id, user_id`

type AssignRepository struct {
	pool *pgxpool.Pool
}

func NewAssignRepository(pool *pgxpool.Pool) *AssignRepository {
	return &AssignRepository{pool: pool}
}

func (r *AssignRepository) Create(ctx context.Context, a *domain.Assign) (*domain.Assign, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO assigns (task_id, user_id)
		VALUES ($1, $2)
		RETURNING `+assignColumns, a.TaskID, a.UserID)

	created, err := scanAssign(row)
	if err != nil {
		if _, ok := pgError(err, codeUniqueViolation); ok {
			return nil, domain.ErrAssignmentAlreadyExists
		}
		if pgErr, ok := pgError(err, codeForeignKeyViolation); ok {
			switch pgErr.ConstraintName {
			case "assigns_task_id_fkey":
				return nil, domain.ErrTaskNotFound
			case "assigns_user_id_fkey":
				return nil, domain.ErrUserNotFound
			}
		}
		return nil, err
	}
	return created, nil
}

func (r *AssignRepository) FindByID(ctx context.Context, id string) (*domain.Assign, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+assignColumns+` FROM assigns WHERE id = $1`, id)
	return scanAssign(row)
}

func (r *AssignRepository) List(ctx context.Context) ([]*domain.Assign, error) {
	return r.query(ctx, `SELECT `+assignColumns+` FROM assigns ORDER BY created_at ASC, id ASC`)
}

func (r *AssignRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Assign, error) {
	return r.query(ctx, `
		SELECT `+assignColumns+` FROM assigns
		WHERE  user_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
}

func (r *AssignRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM assigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Assign, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Assign
	for rows.Next() {
		a, err := scanAssign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

func scanAssign(row rowScanner) (*domain.Assign, error) {
	var a domain.Assign
	if err := row.Scan(&a.ID, &a.TaskID, &a.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("scan assignment: %w", err)
	}
	return &a, nil
}
