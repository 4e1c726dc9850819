package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kessa99/task-manager-back/internal/domain"
)

const invitationColumns = `id, email, task_id, token, invited_by, accepted, expires_at, created_at`

type InvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO invitations (email, task_id, token, invited_by, accepted, expires_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING `+invitationColumns,
		inv.Email,
		inv.TaskID,
		inv.Token,
		inv.InvitedBy,
		inv.ExpiresAt,
	)

	created, err := scanInvitation(row)
	if err != nil {
		if pgErr, ok := pgError(err, codeUniqueViolation); ok && pgErr.ConstraintName == "invitations_pending_email_task_idx" {
			return nil, domain.ErrInvitationAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *InvitationRepository) FindByID(ctx context.Context, id string) (*domain.Invitation, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	return scanInvitation(row)
}

func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	return scanInvitation(row)
}

func (r *InvitationRepository) FindByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	return r.query(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE  lower(email) = lower($1)
		ORDER BY created_at DESC`, email)
}

func (r *InvitationRepository) ListPending(ctx context.Context, now time.Time) ([]*domain.Invitation, error) {
	return r.query(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE  NOT accepted
		  AND  expires_at >= $1
		ORDER BY created_at DESC`, now)
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE invitations SET accepted = TRUE WHERE id = $1 AND NOT accepted`, id)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvitationAlreadyAccepted
	}
	return nil
}

func (r *InvitationRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete invitation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *InvitationRepository) DeleteExpiredPending(ctx context.Context, email, taskID string, now time.Time) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		DELETE FROM invitations
		WHERE  lower(email) = lower($1)
		  AND  task_id      = $2
		  AND  NOT accepted
		  AND  expires_at   < $3`, email, taskID, now)
	if err != nil {
		return fmt.Errorf("delete expired invitations: %w", err)
	}
	return nil
}

func (r *InvitationRepository) PurgeExpired(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		DELETE FROM invitations
		WHERE id IN (
			SELECT id FROM invitations
			WHERE  NOT accepted
			  AND  expires_at < $1
			ORDER BY expires_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("purge expired invitations: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *InvitationRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Invitation, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return out, nil
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.Email,
		&inv.TaskID,
		&inv.Token,
		&inv.InvitedBy,
		&inv.Accepted,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("scan invitation: %w", err)
	}
	return &inv, nil
}
