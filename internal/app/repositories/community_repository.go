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
	"github.com/yigit/edulearn/internal/pkg/dberrors"
)

// PostFilter narrows a board listing.
type PostFilter struct {
	Board    models.Board
	Query    string
	AuthorID *int64
	// ViewerID hides other users' closed posts unless AllVisible is set.
	ViewerID   int64
	AllVisible bool
	Offset     uint64
	Limit      int
}

// CommunityRepository handles community board database operations
type CommunityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db, sb: statementBuilder()}
}

var postColumns = []string{
	"p.id", "p.author_id", "p.board", "p.title", "p.content", "p.is_open", "p.views", "p.created_at", "p.updated_at",
	"u.first_name", "u.last_name", "u.role_type",
	"(SELECT COUNT(*) FROM community_comments cc WHERE cc.post_id = p.id AND NOT cc.is_deleted)",
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{Author: &models.User{}}
	err := row.Scan(&p.ID, &p.AuthorID, &p.Board, &p.Title, &p.Content, &p.IsOpen, &p.Views, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.FirstName, &p.Author.LastName, &p.Author.RoleType, &p.CommentCount)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return p, nil
}

// CreatePost inserts a post
func (r *CommunityRepository) CreatePost(ctx context.Context, p *models.Post) error {
	sql, args, err := r.sb.Insert("community_posts").
		Columns("author_id", "board", "title", "content", "is_open").
		Values(p.AuthorID, p.Board, p.Title, p.Content, p.IsOpen).
		Suffix("RETURNING id, views, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create post query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.Views, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetPost retrieves a post with its author and live comment count
func (r *CommunityRepository) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	sql, args, err := r.sb.Select(postColumns...).
		From("community_posts p").
		Join("users u ON u.id = p.author_id").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get post query: %w", err)
	}
	p, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("post not found")
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}
	return p, nil
}

// UpdatePost rewrites a post's editable fields
func (r *CommunityRepository) UpdatePost(ctx context.Context, p *models.Post) error {
	p.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("community_posts").
		SetMap(map[string]interface{}{
			"board":      p.Board,
			"title":      p.Title,
			"content":    p.Content,
			"is_open":    p.IsOpen,
			"updated_at": p.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update post query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating post: %w", err)
	}
	return nil
}

// DeletePost removes a post and its comments
func (r *CommunityRepository) DeletePost(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("community_posts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete post query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	return nil
}

func (r *CommunityRepository) applyPostFilter(q squirrel.SelectBuilder, f PostFilter) squirrel.SelectBuilder {
	if f.Board != "" {
		q = q.Where(squirrel.Eq{"p.board": f.Board})
	}
	if f.AuthorID != nil {
		q = q.Where(squirrel.Eq{"p.author_id": *f.AuthorID})
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"p.title": pattern},
			squirrel.ILike{"p.content": pattern},
			squirrel.Expr("(u.first_name || ' ' || u.last_name) ILIKE ?", pattern),
		})
	}
	if !f.AllVisible {
		q = q.Where(squirrel.Or{squirrel.Eq{"p.is_open": true}, squirrel.Eq{"p.author_id": f.ViewerID}})
	}
	return q
}

// ListPosts returns a page of posts and the total that match the filter
func (r *CommunityRepository) ListPosts(ctx context.Context, f PostFilter) ([]*models.Post, int64, error) {
	countQuery := r.applyPostFilter(
		r.sb.Select("COUNT(*)").From("community_posts p").Join("users u ON u.id = p.author_id"), f)
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build post count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	q := r.applyPostFilter(
		r.sb.Select(postColumns...).From("community_posts p").Join("users u ON u.id = p.author_id"), f).
		OrderBy("p.created_at DESC", "p.id DESC").
		Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// IncrementPostViews bumps the view counter
func (r *CommunityRepository) IncrementPostViews(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("community_posts").Set("views", squirrel.Expr("views + 1")).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build increment views query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing post views: %w", err)
	}
	return nil
}

var commentColumns = []string{
	"c.id", "c.post_id", "c.parent_id", "c.author_id", "c.content", "c.is_deleted", "c.created_at",
	"u.first_name", "u.last_name", "u.role_type",
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{Author: &models.User{}}
	err := row.Scan(&c.ID, &c.PostID, &c.ParentID, &c.AuthorID, &c.Content, &c.IsDeleted, &c.CreatedAt,
		&c.Author.FirstName, &c.Author.LastName, &c.Author.RoleType)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.AuthorID
	return c, nil
}

// CreateComment inserts a comment
func (r *CommunityRepository) CreateComment(ctx context.Context, c *models.Comment) error {
	sql, args, err := r.sb.Insert("community_comments").
		Columns("post_id", "parent_id", "author_id", "content").
		Values(c.PostID, c.ParentID, c.AuthorID, c.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create comment query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("post or parent comment not found")
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment
func (r *CommunityRepository) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	sql, args, err := r.sb.Select(commentColumns...).
		From("community_comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get comment query: %w", err)
	}
	c, err := scanComment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("comment not found")
		}
		return nil, fmt.Errorf("error retrieving comment: %w", err)
	}
	return c, nil
}

// ListComments returns every comment on a post in posting order
func (r *CommunityRepository) ListComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	sql, args, err := r.sb.Select(commentColumns...).
		From("community_comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.post_id": postID}).
		OrderBy("c.created_at", "c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// SoftDeleteComment blanks a comment but keeps it so replies stay attached
func (r *CommunityRepository) SoftDeleteComment(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("community_comments").
		Set("is_deleted", true).
		Set("content", "").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete comment query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	return nil
}
