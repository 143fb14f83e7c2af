package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
)

// OneTimeTokenRepository stores single-use tokens. The same code serves the
// email verification and password reset tables, which share one shape.
type OneTimeTokenRepository struct {
	db       *pgxpool.Pool
	sb       squirrel.StatementBuilderType
	table    string
	notFound error
}

// NewVerificationTokenRepository stores email verification tokens
func NewVerificationTokenRepository(db *pgxpool.Pool) *OneTimeTokenRepository {
	return &OneTimeTokenRepository{db: db, sb: statementBuilder(), table: "email_verification_tokens", notFound: apperrors.ErrInvalidEmailToken}
}

// NewPasswordResetTokenRepository stores password reset tokens
func NewPasswordResetTokenRepository(db *pgxpool.Pool) *OneTimeTokenRepository {
	return &OneTimeTokenRepository{db: db, sb: statementBuilder(), table: "password_reset_tokens", notFound: apperrors.ErrInvalidPasswordResetToken}
}

// Create stores a new token
func (r *OneTimeTokenRepository) Create(ctx context.Context, token *models.OneTimeToken) error {
	sql, args, err := r.sb.Insert(r.table).
		Columns("token", "user_id", "expires_at").
		Values(token.Token, token.UserID, token.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create %s query: %w", r.table, err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&token.ID, &token.CreatedAt); err != nil {
		return fmt.Errorf("error creating %s row: %w", r.table, err)
	}
	return nil
}

// GetByToken looks a token up by value, used or not
func (r *OneTimeTokenRepository) GetByToken(ctx context.Context, value string) (*models.OneTimeToken, error) {
	sql, args, err := r.sb.Select("id", "token", "user_id", "expires_at", "used_at", "created_at").
		From(r.table).
		Where(squirrel.Eq{"token": value}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get %s query: %w", r.table, err)
	}

	t := &models.OneTimeToken{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("error retrieving %s row: %w", r.table, err)
	}
	return t, nil
}

// MarkUsed stamps used_at so the token cannot be replayed
func (r *OneTimeTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update(r.table).
		Set("used_at", time.Now()).
		Where(squirrel.Eq{"id": id, "used_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark used query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking %s row used: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return r.notFound
	}
	return nil
}

// InvalidateForUser marks every outstanding token of the user as used
func (r *OneTimeTokenRepository) InvalidateForUser(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update(r.table).
		Set("used_at", time.Now()).
		Where(squirrel.Eq{"user_id": userID, "used_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build invalidate query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error invalidating %s rows: %w", r.table, err)
	}
	return nil
}

// CleanupExpired deletes tokens that expired or were used more than a day ago
func (r *OneTimeTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	now := time.Now()
	sql, args, err := r.sb.Delete(r.table).
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.Lt{"used_at": now.Add(-24 * time.Hour)},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up %s: %w", r.table, err)
	}
	return tag.RowsAffected(), nil
}
