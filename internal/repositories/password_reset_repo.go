package repositories

import (
	"context"
	"errors"

	"galleria/internal/common"
	"galleria/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type passwordResetRepo struct {
	db DB
}

func NewPasswordResetRepo(db DB) PasswordResetRepository {
	return &passwordResetRepo{db: db}
}

func (r *passwordResetRepo) Create(ctx context.Context, reset *models.PasswordReset) error {
	query := `
		INSERT INTO password_resets (id, user_id, code_hash, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
	`
	_, err := r.db.Exec(ctx, query, reset.ID, reset.UserID, reset.CodeHash, reset.ExpiresAt)
	return err
}

// GetActiveByUserID returns the newest unused, unexpired reset for the user.
func (r *passwordResetRepo) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*models.PasswordReset, error) {
	reset := &models.PasswordReset{}
	query := `
		SELECT id, user_id, code_hash, expires_at, used, created_at
		FROM password_resets
		WHERE user_id = $1 AND used = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&reset.ID, &reset.UserID, &reset.CodeHash, &reset.ExpiresAt, &reset.Used, &reset.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("active password reset for user %s", userID)
		}
		return nil, err
	}
	return reset, nil
}

func (r *passwordResetRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE password_resets SET used = TRUE WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("password reset %s", id)
	}
	return nil
}

// DeleteExpired purges used and expired rows. Run by the weekly cleanup job.
func (r *passwordResetRepo) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM password_resets WHERE used = TRUE OR expires_at <= NOW()`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
