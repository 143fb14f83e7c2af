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

// CourseNoticeRepository handles course notice database operations
type CourseNoticeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseNoticeRepository creates a new CourseNoticeRepository
func NewCourseNoticeRepository(db *pgxpool.Pool) *CourseNoticeRepository {
	return &CourseNoticeRepository{db: db, sb: statementBuilder()}
}

var courseNoticeColumns = []string{"id", "course_id", "author_id", "title", "content", "is_pinned", "created_at", "updated_at"}

func scanCourseNotice(row rowScanner) (*models.CourseNotice, error) {
	n := &models.CourseNotice{}
	err := row.Scan(&n.ID, &n.CourseID, &n.AuthorID, &n.Title, &n.Content, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// Create inserts a course notice
func (r *CourseNoticeRepository) Create(ctx context.Context, n *models.CourseNotice) error {
	sql, args, err := r.sb.Insert("course_notices").
		Columns("course_id", "author_id", "title", "content", "is_pinned").
		Values(n.CourseID, n.AuthorID, n.Title, n.Content, n.IsPinned).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course notice query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return fmt.Errorf("error creating course notice: %w", err)
	}
	return nil
}

// GetByID retrieves a course notice
func (r *CourseNoticeRepository) GetByID(ctx context.Context, id int64) (*models.CourseNotice, error) {
	sql, args, err := r.sb.Select(courseNoticeColumns...).From("course_notices").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course notice query: %w", err)
	}
	n, err := scanCourseNotice(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("notice not found")
		}
		return nil, fmt.Errorf("error retrieving course notice: %w", err)
	}
	return n, nil
}

// Update rewrites a course notice
func (r *CourseNoticeRepository) Update(ctx context.Context, n *models.CourseNotice) error {
	n.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("course_notices").
		Set("title", n.Title).
		Set("content", n.Content).
		Set("is_pinned", n.IsPinned).
		Set("updated_at", n.UpdatedAt).
		Where(squirrel.Eq{"id": n.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course notice query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error updating course notice: %w", err)
	}
	return nil
}

// Delete removes a course notice
func (r *CourseNoticeRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("course_notices").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course notice query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting course notice: %w", err)
	}
	return nil
}

// ListByCourse returns a course's notices, pinned first then newest
func (r *CourseNoticeRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.CourseNotice, error) {
	sql, args, err := r.sb.Select(courseNoticeColumns...).
		From("course_notices").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("is_pinned DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list course notices query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing course notices: %w", err)
	}
	defer rows.Close()

	list := make([]*models.CourseNotice, 0)
	for rows.Next() {
		n, err := scanCourseNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course notice: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// WeeklyContentRepository handles weekly content database operations
type WeeklyContentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewWeeklyContentRepository creates a new WeeklyContentRepository
func NewWeeklyContentRepository(db *pgxpool.Pool) *WeeklyContentRepository {
	return &WeeklyContentRepository{db: db, sb: statementBuilder()}
}

var weeklyColumns = []string{"id", "course_id", "week_number", "title", "content", "video_url", "file_path", "created_at", "updated_at"}

func scanWeekly(row rowScanner) (*models.WeeklyContent, error) {
	w := &models.WeeklyContent{}
	err := row.Scan(&w.ID, &w.CourseID, &w.WeekNumber, &w.Title, &w.Content, &w.VideoURL, &w.FilePath, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func weekTaken(err error) error {
	if dberrors.IsUniqueViolation(err) {
		return apperrors.NewConflictError("content for this week already exists")
	}
	return fmt.Errorf("error saving weekly content: %w", err)
}

// Create inserts weekly content; the (course, week) pair must be unique
func (r *WeeklyContentRepository) Create(ctx context.Context, w *models.WeeklyContent) error {
	sql, args, err := r.sb.Insert("weekly_contents").
		Columns("course_id", "week_number", "title", "content", "video_url", "file_path").
		Values(w.CourseID, w.WeekNumber, w.Title, w.Content, w.VideoURL, w.FilePath).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create weekly content query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return weekTaken(err)
	}
	return nil
}

// GetByID retrieves weekly content
func (r *WeeklyContentRepository) GetByID(ctx context.Context, id int64) (*models.WeeklyContent, error) {
	sql, args, err := r.sb.Select(weeklyColumns...).From("weekly_contents").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get weekly content query: %w", err)
	}
	w, err := scanWeekly(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("weekly content not found")
		}
		return nil, fmt.Errorf("error retrieving weekly content: %w", err)
	}
	return w, nil
}

// Update rewrites weekly content
func (r *WeeklyContentRepository) Update(ctx context.Context, w *models.WeeklyContent) error {
	w.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("weekly_contents").
		SetMap(map[string]interface{}{
			"week_number": w.WeekNumber,
			"title":       w.Title,
			"content":     w.Content,
			"video_url":   w.VideoURL,
			"file_path":   w.FilePath,
			"updated_at":  w.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": w.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update weekly content query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return weekTaken(err)
	}
	return nil
}

// Delete removes weekly content
func (r *WeeklyContentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("weekly_contents").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete weekly content query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting weekly content: %w", err)
	}
	return nil
}

// ListByCourse returns a course's weekly content ordered by week
func (r *WeeklyContentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.WeeklyContent, error) {
	sql, args, err := r.sb.Select(weeklyColumns...).
		From("weekly_contents").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("week_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list weekly content query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing weekly content: %w", err)
	}
	defer rows.Close()

	list := make([]*models.WeeklyContent, 0)
	for rows.Next() {
		w, err := scanWeekly(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning weekly content: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// QuestionRepository handles course Q&A database operations
type QuestionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db, sb: statementBuilder()}
}

var questionColumns = []string{
	"q.id", "q.course_id", "q.author_id", "q.title", "q.content", "q.is_resolved", "q.created_at",
	"u.first_name", "u.last_name", "u.role_type",
}

func scanQuestion(row rowScanner) (*models.CourseQuestion, error) {
	q := &models.CourseQuestion{Author: &models.User{}}
	err := row.Scan(&q.ID, &q.CourseID, &q.AuthorID, &q.Title, &q.Content, &q.IsResolved, &q.CreatedAt,
		&q.Author.FirstName, &q.Author.LastName, &q.Author.RoleType)
	if err != nil {
		return nil, err
	}
	q.Author.ID = q.AuthorID
	return q, nil
}

// Create inserts a question
func (r *QuestionRepository) Create(ctx context.Context, q *models.CourseQuestion) error {
	sql, args, err := r.sb.Insert("course_questions").
		Columns("course_id", "author_id", "title", "content").
		Values(q.CourseID, q.AuthorID, q.Title, q.Content).
		Suffix("RETURNING id, is_resolved, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create question query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&q.ID, &q.IsResolved, &q.CreatedAt); err != nil {
		return fmt.Errorf("error creating question: %w", err)
	}
	return nil
}

// GetByID retrieves a question without its answers
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.CourseQuestion, error) {
	sql, args, err := r.sb.Select(questionColumns...).
		From("course_questions q").
		Join("users u ON u.id = q.author_id").
		Where(squirrel.Eq{"q.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get question query: %w", err)
	}
	q, err := scanQuestion(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("question not found")
		}
		return nil, fmt.Errorf("error retrieving question: %w", err)
	}
	return q, nil
}

// ListByCourse returns a course's questions, newest first
func (r *QuestionRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.CourseQuestion, error) {
	sql, args, err := r.sb.Select(questionColumns...).
		From("course_questions q").
		Join("users u ON u.id = q.author_id").
		Where(squirrel.Eq{"q.course_id": courseID}).
		OrderBy("q.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list questions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing questions: %w", err)
	}
	defer rows.Close()

	list := make([]*models.CourseQuestion, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning question: %w", err)
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// SetResolved stores the resolved flag
func (r *QuestionRepository) SetResolved(ctx context.Context, id int64, resolved bool) error {
	sql, args, err := r.sb.Update("course_questions").Set("is_resolved", resolved).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build resolve question query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error resolving question: %w", err)
	}
	return nil
}

// Delete removes a question and its answers
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("course_questions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete question query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting question: %w", err)
	}
	return nil
}

// CreateAnswer inserts an answer
func (r *QuestionRepository) CreateAnswer(ctx context.Context, a *models.QuestionAnswer) error {
	sql, args, err := r.sb.Insert("question_answers").
		Columns("question_id", "author_id", "content", "is_instructor_answer").
		Values(a.QuestionID, a.AuthorID, a.Content, a.IsInstructorAnswer).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create answer query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("error creating answer: %w", err)
	}
	return nil
}

// ListAnswers returns a question's answers in posting order
func (r *QuestionRepository) ListAnswers(ctx context.Context, questionID int64) ([]*models.QuestionAnswer, error) {
	sql, args, err := r.sb.Select("a.id", "a.question_id", "a.author_id", "a.content", "a.is_instructor_answer", "a.created_at",
		"u.first_name", "u.last_name", "u.role_type").
		From("question_answers a").
		Join("users u ON u.id = a.author_id").
		Where(squirrel.Eq{"a.question_id": questionID}).
		OrderBy("a.created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list answers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing answers: %w", err)
	}
	defer rows.Close()

	list := make([]*models.QuestionAnswer, 0)
	for rows.Next() {
		a := &models.QuestionAnswer{Author: &models.User{}}
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Content, &a.IsInstructorAnswer, &a.CreatedAt,
			&a.Author.FirstName, &a.Author.LastName, &a.Author.RoleType); err != nil {
			return nil, fmt.Errorf("error scanning answer: %w", err)
		}
		a.Author.ID = a.AuthorID
		list = append(list, a)
	}
	return list, rows.Err()
}
