package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/dberrors"
	"github.com/yigit/edulearn/internal/pkg/logger"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

// EnrollmentRepository handles enrollment database operations
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, sb: statementBuilder()}
}

// Create enrolls a student. A second enrollment in the same course fails with ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	sql, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "course_id").
		Values(e.StudentID, e.CourseID).
		Suffix("RETURNING id, progress, is_completed, enrolled_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.Progress, &e.IsCompleted, &e.EnrolledAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyEnrolled
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("course not found")
		}
		logger.Error().Err(err).Int64("studentID", e.StudentID).Int64("courseID", e.CourseID).Msg("Error creating enrollment")
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}

// Get returns the enrollment of a student in a course
func (r *EnrollmentRepository) Get(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select("id", "student_id", "course_id", "progress", "is_completed", "last_accessed_at", "enrolled_at").
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	e := &models.Enrollment{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.StudentID, &e.CourseID, &e.Progress, &e.IsCompleted, &e.LastAccessedAt, &e.EnrolledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotEnrolled
		}
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return e, nil
}

// Exists reports whether the student is enrolled in the course
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").From("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build enrollment exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return exists, nil
}

// Delete removes an enrollment
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, courseID int64) error {
	sql, args, err := r.sb.Delete("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete enrollment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotEnrolled
	}
	return nil
}

// ListByStudent returns a student's enrollments with the course and its instructor attached
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	columns := append([]string{"e.id", "e.student_id", "e.course_id", "e.progress", "e.is_completed", "e.last_accessed_at", "e.enrolled_at"}, courseColumns...)
	sql, args, err := r.sb.Select(columns...).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Join("users u ON u.id = c.instructor_id").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("c.weekday", "c.start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Enrollment, 0)
	for rows.Next() {
		e := &models.Enrollment{}
		c := &models.Course{Instructor: &models.User{}}
		var weekday int16
		var start, end pgtype.Time
		err := rows.Scan(
			&e.ID, &e.StudentID, &e.CourseID, &e.Progress, &e.IsCompleted, &e.LastAccessedAt, &e.EnrolledAt,
			&c.ID, &c.Title, &c.Description, &c.Category, &c.InstructorID, &weekday,
			&start, &end, &c.StartDate, &c.EndDate, &c.MaxStudents,
			&c.Views, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&c.Instructor.FirstName, &c.Instructor.LastName, &c.Instructor.RoleType,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning enrollment: %w", err)
		}
		c.Weekday = schedule.Weekday(weekday)
		c.StartTime = clockValue(start)
		c.EndTime = clockValue(end)
		c.Instructor.ID = c.InstructorID
		e.Course = c
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListByCourse returns the roster of a course with student contact details
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Enrollment, error) {
	sql, args, err := r.sb.Select("e.id", "e.student_id", "e.course_id", "e.progress", "e.is_completed",
		"e.last_accessed_at", "e.enrolled_at", "u.email", "u.first_name", "u.last_name", "u.phone").
		From("enrollments e").
		Join("users u ON u.id = e.student_id").
		Where(squirrel.Eq{"e.course_id": courseID}).
		OrderBy("u.last_name", "u.first_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build roster query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing roster: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Enrollment, 0)
	for rows.Next() {
		e := &models.Enrollment{Student: &models.User{RoleType: models.RoleStudent}}
		err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.Progress, &e.IsCompleted, &e.LastAccessedAt, &e.EnrolledAt,
			&e.Student.Email, &e.Student.FirstName, &e.Student.LastName, &e.Student.Phone)
		if err != nil {
			return nil, fmt.Errorf("error scanning roster row: %w", err)
		}
		e.Student.ID = e.StudentID
		list = append(list, e)
	}
	return list, rows.Err()
}

// UpdateProgress records progress and touches the last access time
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, studentID, courseID int64, progress int, completed bool) error {
	sql, args, err := r.sb.Update("enrollments").
		Set("progress", progress).
		Set("is_completed", completed).
		Set("last_accessed_at", time.Now()).
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update progress query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotEnrolled
	}
	return nil
}
