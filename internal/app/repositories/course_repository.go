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
	"github.com/yigit/edulearn/internal/pkg/logger"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

var courseColumns = []string{
	"c.id", "c.title", "c.description", "c.category", "c.instructor_id", "c.weekday",
	"c.start_time", "c.end_time", "c.start_date", "c.end_date", "c.max_students",
	"c.image_path", "c.views", "c.is_active", "c.created_at", "c.updated_at",
	"u.first_name", "u.last_name", "u.role_type",
}

// CourseFilter narrows a catalog listing
type CourseFilter struct {
	Category     models.CourseCategory
	InstructorID int64
	// OpenOn keeps only active courses whose end date is unset or not before this day.
	OpenOn *time.Time
	Offset uint64
	Limit  int
}

// CourseRepository handles course database operations
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db, sb: statementBuilder()}
}

func scanCourse(row rowScanner) (*models.Course, error) {
	c := &models.Course{Instructor: &models.User{}}
	var weekday int16
	var start, end pgtype.Time
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Category, &c.InstructorID, &weekday,
		&start, &end, &c.StartDate, &c.EndDate, &c.MaxStudents,
		&c.ImagePath, &c.Views, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&c.Instructor.FirstName, &c.Instructor.LastName, &c.Instructor.RoleType,
	)
	if err != nil {
		return nil, err
	}
	c.Weekday = schedule.Weekday(weekday)
	c.StartTime = clockValue(start)
	c.EndTime = clockValue(end)
	c.Instructor.ID = c.InstructorID
	return c, nil
}

func (r *CourseRepository) selectCourses() squirrel.SelectBuilder {
	return r.sb.Select(courseColumns...).
		From("courses c").
		Join("users u ON u.id = c.instructor_id")
}

func (r *CourseRepository) queryCourses(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Course, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying courses")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Create inserts a course and fills in its ID and timestamps
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("title", "description", "category", "instructor_id", "weekday",
			"start_time", "end_time", "start_date", "end_date", "max_students", "is_active").
		Values(c.Title, c.Description, c.Category, c.InstructorID, int16(c.Weekday),
			clockParam(c.StartTime), clockParam(c.EndTime), c.StartDate, c.EndDate, c.MaxStudents, c.IsActive).
		Suffix("RETURNING id, views, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Views, &c.CreatedAt, &c.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("instructorID", c.InstructorID).Msg("Error creating course")
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// GetByID retrieves a course, active or not, with its instructor's name
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.selectCourses().Where(squirrel.Eq{"c.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("course not found")
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return c, nil
}

// Update rewrites the editable fields of a course
func (r *CourseRepository) Update(ctx context.Context, c *models.Course) error {
	c.UpdatedAt = time.Now()
	sql, args, err := r.sb.Update("courses").
		SetMap(map[string]interface{}{
			"title":        c.Title,
			"description":  c.Description,
			"category":     c.Category,
			"weekday":      int16(c.Weekday),
			"start_time":   clockParam(c.StartTime),
			"end_time":     clockParam(c.EndTime),
			"start_date":   c.StartDate,
			"end_date":     c.EndDate,
			"max_students": c.MaxStudents,
			"updated_at":   c.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", c.ID).Msg("Error updating course")
		return fmt.Errorf("error updating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	return nil
}

// SetImage stores or clears (nil) the thumbnail path of a course
func (r *CourseRepository) SetImage(ctx context.Context, id int64, path *string) error {
	sql, args, err := r.sb.Update("courses").
		Set("image_path", path).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set course image query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error setting course image")
		return fmt.Errorf("error setting course image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	return nil
}

// Deactivate soft-deletes a course
func (r *CourseRepository) Deactivate(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("courses").
		Set("is_active", false).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build deactivate course query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deactivating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	return nil
}

func openOn(q squirrel.SelectBuilder, day time.Time) squirrel.SelectBuilder {
	return q.Where(squirrel.Eq{"c.is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"c.end_date": nil},
			squirrel.GtOrEq{"c.end_date": day},
		})
}

// List returns one page of courses matching the filter and the total count
func (r *CourseRepository) List(ctx context.Context, f CourseFilter) ([]*models.Course, int64, error) {
	q := r.selectCourses()
	count := r.sb.Select("COUNT(*)").From("courses c")

	if f.Category != "" {
		q = q.Where(squirrel.Eq{"c.category": f.Category})
		count = count.Where(squirrel.Eq{"c.category": f.Category})
	}
	if f.InstructorID > 0 {
		q = q.Where(squirrel.Eq{"c.instructor_id": f.InstructorID})
		count = count.Where(squirrel.Eq{"c.instructor_id": f.InstructorID})
	}
	if f.OpenOn != nil {
		q = openOn(q, *f.OpenOn)
		count = openOn(count, *f.OpenOn)
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build course count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	q = q.OrderBy("c.created_at DESC", "c.id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(f.Offset)
	}

	courses, err := r.queryCourses(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// ListByInstructor returns an instructor's courses. With openDay set only
// courses still running on that day are returned.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID int64, openDay *time.Time) ([]*models.Course, error) {
	q := r.selectCourses().Where(squirrel.Eq{"c.instructor_id": instructorID})
	if openDay != nil {
		q = openOn(q, *openDay)
	}
	return r.queryCourses(ctx, q.OrderBy("c.weekday", "c.start_time"))
}

// IncrementViews bumps the view counter
func (r *CourseRepository) IncrementViews(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("courses").
		Set("views", squirrel.Expr("views + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build increment views query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error incrementing course views: %w", err)
	}
	return nil
}
