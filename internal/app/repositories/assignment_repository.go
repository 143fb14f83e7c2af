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
	"github.com/yigit/edulearn/internal/pkg/logger"
)

var assignmentColumns = []string{
	"id", "course_id", "title", "description", "due_date", "max_score",
	"attachment_path", "created_by", "created_at", "updated_at",
}

// AssignmentRepository handles assignment database operations
type AssignmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db, sb: statementBuilder()}
}

func scanAssignment(row rowScanner) (*models.Assignment, error) {
	a := &models.Assignment{}
	err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &a.DueDate, &a.MaxScore,
		&a.AttachmentPath, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an assignment
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	sql, args, err := r.sb.Insert("assignments").
		Columns("course_id", "title", "description", "due_date", "max_score", "attachment_path", "created_by").
		Values(a.CourseID, a.Title, a.Description, a.DueDate, a.MaxScore, a.AttachmentPath, a.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create assignment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("courseID", a.CourseID).Msg("Error creating assignment")
		return fmt.Errorf("error creating assignment: %w", err)
	}
	return nil
}

// GetByID retrieves an assignment
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	sql, args, err := r.sb.Select(assignmentColumns...).From("assignments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get assignment query: %w", err)
	}

	a, err := scanAssignment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("assignment not found")
		}
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return a, nil
}

// Update rewrites an assignment's editable fields
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	a.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("assignments").
		SetMap(map[string]interface{}{
			"title":           a.Title,
			"description":     a.Description,
			"due_date":        a.DueDate,
			"max_score":       a.MaxScore,
			"attachment_path": a.AttachmentPath,
			"updated_at":      a.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update assignment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("assignment not found")
	}
	return nil
}

// Delete removes an assignment and, by cascade, its submissions
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("assignments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete assignment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("assignment not found")
	}
	return nil
}

// ListByCourse returns a course's assignments, earliest due first
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Assignment, error) {
	return r.list(ctx, r.sb.Select(assignmentColumns...).
		From("assignments").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("due_date NULLS LAST", "id"))
}

// ListPending returns assignments of courseIDs due at or after dueFrom that
// the student has not submitted yet, soonest first.
func (r *AssignmentRepository) ListPending(ctx context.Context, studentID int64, courseIDs []int64, dueFrom time.Time, limit int) ([]*models.Assignment, error) {
	if len(courseIDs) == 0 {
		return []*models.Assignment{}, nil
	}
	return r.list(ctx, r.sb.Select(assignmentColumns...).
		From("assignments").
		Where(squirrel.Eq{"course_id": courseIDs}).
		Where(squirrel.GtOrEq{"due_date": dueFrom}).
		Where("NOT EXISTS (SELECT 1 FROM submissions s WHERE s.assignment_id = assignments.id AND s.student_id = ?)", studentID).
		OrderBy("due_date", "id").
		Limit(uint64(limit)))
}

func (r *AssignmentRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Assignment, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning assignment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
