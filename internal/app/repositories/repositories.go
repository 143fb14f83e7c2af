package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/edulearn/internal/pkg/schedule"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository          *UserRepository
	TokenRepository         *TokenRepository
	VerificationTokens      *OneTimeTokenRepository
	PasswordResetTokens     *OneTimeTokenRepository
	CourseRepository        *CourseRepository
	EnrollmentRepository    *EnrollmentRepository
	AssignmentRepository    *AssignmentRepository
	SubmissionRepository    *SubmissionRepository
	CourseNoticeRepository  *CourseNoticeRepository
	WeeklyContentRepository *WeeklyContentRepository
	QuestionRepository      *QuestionRepository
	NoticeRepository        *NoticeRepository
	CommunityRepository     *CommunityRepository
	MessengerRepository     *MessengerRepository
	FAQRepository           *FAQRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:          NewUserRepository(db),
		TokenRepository:         NewTokenRepository(db),
		VerificationTokens:      NewVerificationTokenRepository(db),
		PasswordResetTokens:     NewPasswordResetTokenRepository(db),
		CourseRepository:        NewCourseRepository(db),
		EnrollmentRepository:    NewEnrollmentRepository(db),
		AssignmentRepository:    NewAssignmentRepository(db),
		SubmissionRepository:    NewSubmissionRepository(db),
		CourseNoticeRepository:  NewCourseNoticeRepository(db),
		WeeklyContentRepository: NewWeeklyContentRepository(db),
		QuestionRepository:      NewQuestionRepository(db),
		NoticeRepository:        NewNoticeRepository(db),
		CommunityRepository:     NewCommunityRepository(db),
		MessengerRepository:     NewMessengerRepository(db),
		FAQRepository:           NewFAQRepository(db),
	}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func clockParam(c schedule.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: c.Microseconds(), Valid: true}
}

// clockValue converts a scanned TIME column. NULL maps to midnight.
func clockValue(t pgtype.Time) schedule.Clock {
	if !t.Valid {
		return 0
	}
	return schedule.ClockFromMicroseconds(t.Microseconds)
}
