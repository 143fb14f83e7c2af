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

var noticeColumns = []string{"id", "author_id", "title", "content", "notice_type", "target", "is_pinned", "views", "created_at", "updated_at"}

// NoticeRepository handles site notice database operations
type NoticeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNoticeRepository creates a new NoticeRepository
func NewNoticeRepository(db *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{db: db, sb: statementBuilder()}
}

func scanNotice(row rowScanner) (*models.Notice, error) {
	n := &models.Notice{}
	err := row.Scan(&n.ID, &n.AuthorID, &n.Title, &n.Content, &n.NoticeType, &n.Target, &n.IsPinned, &n.Views, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// Create inserts a notice
func (r *NoticeRepository) Create(ctx context.Context, n *models.Notice) error {
	sql, args, err := r.sb.Insert("notices").
		Columns("author_id", "title", "content", "notice_type", "target", "is_pinned").
		Values(n.AuthorID, n.Title, n.Content, n.NoticeType, n.Target, n.IsPinned).
		Suffix("RETURNING id, views, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notice query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.Views, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return fmt.Errorf("error creating notice: %w", err)
	}
	return nil
}

// GetByID retrieves a notice
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	sql, args, err := r.sb.Select(noticeColumns...).From("notices").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notice query: %w", err)
	}
	n, err := scanNotice(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("notice not found")
		}
		return nil, fmt.Errorf("error retrieving notice: %w", err)
	}
	return n, nil
}

// Update rewrites a notice
func (r *NoticeRepository) Update(ctx context.Context, n *models.Notice) error {
	n.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("notices").
		SetMap(map[string]interface{}{
			"title":       n.Title,
			"content":     n.Content,
			"notice_type": n.NoticeType,
			"target":      n.Target,
			"is_pinned":   n.IsPinned,
			"updated_at":  n.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": n.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update notice query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating notice: %w", err)
	}
	return nil
}

// Delete removes a notice
func (r *NoticeRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("notices").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete notice query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting notice: %w", err)
	}
	return nil
}

// List returns notices for the given audiences (all when targets is empty), pinned first
func (r *NoticeRepository) List(ctx context.Context, targets []models.NoticeTarget, offset uint64, limit int) ([]*models.Notice, int64, error) {
	q := r.sb.Select(noticeColumns...).From("notices")
	count := r.sb.Select("COUNT(*)").From("notices")
	if len(targets) > 0 {
		q = q.Where(squirrel.Eq{"target": targets})
		count = count.Where(squirrel.Eq{"target": targets})
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build notice count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting notices: %w", err)
	}

	sql, args, err := q.OrderBy("is_pinned DESC", "created_at DESC").Offset(offset).Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notices query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notices: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Notice, 0)
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notice: %w", err)
		}
		list = append(list, n)
	}
	return list, total, rows.Err()
}

// IncrementViews bumps the view counter
func (r *NoticeRepository) IncrementViews(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("notices").Set("views", squirrel.Expr("views + 1")).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build increment views query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing notice views: %w", err)
	}
	return nil
}
