package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/account-service/internal/domain"
)

// PasswordResetRepository manages password reset token persistence.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	// Consume updates the owning account's password hash and stamps used_at
	// in one transaction. Either both writes commit or neither does.
	Consume(ctx context.Context, tokenID, userID, passwordHash string) error
	DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error)
	DeleteUsedCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	const query = `
        INSERT INTO password_reset_tokens (token, user_id, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.Token,
		token.UserID,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.PasswordResetToken, error) {
	const query = `
        SELECT id, token, user_id, expires_at, used_at, created_at
        FROM password_reset_tokens WHERE token=$1`
	var token domain.PasswordResetToken
	if err := r.pool.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.Token,
		&token.UserID,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *passwordResetRepository) Consume(ctx context.Context, tokenID, userID, passwordHash string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updatePassword = `
        UPDATE users SET password_hash=$1, updated_at=NOW()
        WHERE id=$2`
	if _, err := tx.Exec(ctx, updatePassword, passwordHash, userID); err != nil {
		return err
	}

	const markUsed = `
        UPDATE password_reset_tokens SET used_at=NOW()
        WHERE id=$1 AND used_at IS NULL`
	if _, err := tx.Exec(ctx, markUsed, tokenID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *passwordResetRepository) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	const query = `
        DELETE FROM password_reset_tokens
        WHERE expires_at < $1 OR used_at IS NOT NULL`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *passwordResetRepository) DeleteUsedCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `
        DELETE FROM password_reset_tokens
        WHERE used_at IS NOT NULL AND created_at < $1`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
