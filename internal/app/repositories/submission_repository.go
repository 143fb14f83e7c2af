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

var submissionColumns = []string{
	"s.id", "s.assignment_id", "s.student_id", "s.content", "s.file_path", "s.score",
	"s.feedback", "s.graded_at", "s.submitted_at", "u.first_name", "u.last_name",
}

// SubmissionRepository handles submission database operations
type SubmissionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{db: db, sb: statementBuilder()}
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	s := &models.Submission{Student: &models.User{RoleType: models.RoleStudent}}
	err := row.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.Content, &s.FilePath, &s.Score,
		&s.Feedback, &s.GradedAt, &s.SubmittedAt, &s.Student.FirstName, &s.Student.LastName)
	if err != nil {
		return nil, err
	}
	s.Student.ID = s.StudentID
	return s, nil
}

func (r *SubmissionRepository) selectSubmissions() squirrel.SelectBuilder {
	return r.sb.Select(submissionColumns...).
		From("submissions s").
		Join("users u ON u.id = s.student_id")
}

// Upsert stores a submission. Resubmitting replaces the content and clears any
// grade. It returns the file path held before the write, if any.
func (r *SubmissionRepository) Upsert(ctx context.Context, s *models.Submission) (*string, error) {
	sql, args, err := r.sb.Insert("submissions").
		Prefix("WITH prev AS (SELECT file_path FROM submissions WHERE assignment_id = ? AND student_id = ?)",
			s.AssignmentID, s.StudentID).
		Columns("assignment_id", "student_id", "content", "file_path").
		Values(s.AssignmentID, s.StudentID, s.Content, s.FilePath).
		Suffix(`ON CONFLICT (assignment_id, student_id) DO UPDATE SET
			content = EXCLUDED.content,
			file_path = COALESCE(EXCLUDED.file_path, submissions.file_path),
			score = NULL, feedback = NULL, graded_at = NULL,
			submitted_at = NOW()
			RETURNING id, file_path, submitted_at, (SELECT file_path FROM prev)`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert submission query: %w", err)
	}

	var previous *string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.FilePath, &s.SubmittedAt, &previous); err != nil {
		logger.Error().Err(err).Int64("assignmentID", s.AssignmentID).Int64("studentID", s.StudentID).Msg("Error saving submission")
		return nil, fmt.Errorf("error saving submission: %w", err)
	}
	s.Score, s.Feedback, s.GradedAt = nil, nil, nil
	return previous, nil
}

func (r *SubmissionRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Submission, error) {
	sql, args, err := r.selectSubmissions().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get submission query: %w", err)
	}

	s, err := scanSubmission(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("submission not found")
		}
		return nil, fmt.Errorf("error retrieving submission: %w", err)
	}
	return s, nil
}

// GetByID retrieves a submission
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	return r.getOne(ctx, squirrel.Eq{"s.id": id})
}

// GetByAssignmentAndStudent retrieves one student's submission
func (r *SubmissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error) {
	return r.getOne(ctx, squirrel.Eq{"s.assignment_id": assignmentID, "s.student_id": studentID})
}

func (r *SubmissionRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Submission, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list submissions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing submissions: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning submission: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListByAssignment returns every submission for an assignment
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Submission, error) {
	return r.list(ctx, r.selectSubmissions().
		Where(squirrel.Eq{"s.assignment_id": assignmentID}).
		OrderBy("s.submitted_at"))
}

// ListByCourse returns every submission for every assignment of a course
func (r *SubmissionRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Submission, error) {
	return r.list(ctx, r.selectSubmissions().
		Join("assignments a ON a.id = s.assignment_id").
		Where(squirrel.Eq{"a.course_id": courseID}).
		OrderBy("s.assignment_id", "s.student_id"))
}

// Grade records a score and feedback
func (r *SubmissionRepository) Grade(ctx context.Context, id int64, score int, feedback string) error {
	sql, args, err := r.sb.Update("submissions").
		Set("score", score).
		Set("feedback", feedback).
		Set("graded_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build grade submission query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error grading submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("submission not found")
	}
	return nil
}
