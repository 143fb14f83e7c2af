package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/dberrors"
)

// FAQRepository stores the chatbot's category tree and answers
type FAQRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFAQRepository creates a new FAQRepository
func NewFAQRepository(db *pgxpool.Pool) *FAQRepository {
	return &FAQRepository{db: db, sb: statementBuilder()}
}

var faqCategoryColumns = []string{"id", "name", "parent_id", "depth", "sort_order"}

// ListCategories returns the children of parentID, or the roots when parentID is nil
func (r *FAQRepository) ListCategories(ctx context.Context, parentID *int64) ([]*models.FAQCategory, error) {
	q := r.sb.Select(faqCategoryColumns...).From("faq_categories")
	if parentID == nil {
		q = q.Where(squirrel.Eq{"parent_id": nil})
	} else {
		q = q.Where(squirrel.Eq{"parent_id": *parentID})
	}
	sql, args, err := q.OrderBy("sort_order", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list faq categories query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing faq categories: %w", err)
	}
	defer rows.Close()

	list := make([]*models.FAQCategory, 0)
	for rows.Next() {
		c := &models.FAQCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.Depth, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("error scanning faq category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetCategory retrieves a category
func (r *FAQRepository) GetCategory(ctx context.Context, id int64) (*models.FAQCategory, error) {
	sql, args, err := r.sb.Select(faqCategoryColumns...).From("faq_categories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get faq category query: %w", err)
	}
	c := &models.FAQCategory{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.ParentID, &c.Depth, &c.SortOrder); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("faq category not found")
		}
		return nil, fmt.Errorf("error retrieving faq category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category
func (r *FAQRepository) CreateCategory(ctx context.Context, c *models.FAQCategory) error {
	sql, args, err := r.sb.Insert("faq_categories").
		Columns("name", "parent_id", "depth", "sort_order").
		Values(c.Name, c.ParentID, c.Depth, c.SortOrder).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create faq category query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("parent category not found")
		}
		return fmt.Errorf("error creating faq category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category with its subtree and items
func (r *FAQRepository) DeleteCategory(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("faq_categories").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete faq category query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting faq category: %w", err)
	}
	return nil
}

// CountCategories returns how many categories exist
func (r *FAQRepository) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM faq_categories").Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting faq categories: %w", err)
	}
	return n, nil
}

// ListItems returns the questions filed under a category
func (r *FAQRepository) ListItems(ctx context.Context, categoryID int64) ([]*models.FAQItem, error) {
	sql, args, err := r.sb.Select("id", "category_id", "question", "answer", "sort_order").
		From("faq_items").
		Where(squirrel.Eq{"category_id": categoryID}).
		OrderBy("sort_order", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list faq items query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing faq items: %w", err)
	}
	defer rows.Close()

	list := make([]*models.FAQItem, 0)
	for rows.Next() {
		it := &models.FAQItem{}
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Question, &it.Answer, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("error scanning faq item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// CreateItem inserts a question and answer
func (r *FAQRepository) CreateItem(ctx context.Context, it *models.FAQItem) error {
	sql, args, err := r.sb.Insert("faq_items").
		Columns("category_id", "question", "answer", "sort_order").
		Values(it.CategoryID, it.Question, it.Answer, it.SortOrder).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create faq item query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&it.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("faq category not found")
		}
		return fmt.Errorf("error creating faq item: %w", err)
	}
	return nil
}

// DeleteItem removes a question
func (r *FAQRepository) DeleteItem(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("faq_items").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete faq item query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting faq item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("faq item not found")
	}
	return nil
}
