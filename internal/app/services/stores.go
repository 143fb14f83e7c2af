package services

import (
	"context"
	"time"

	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/repositories"
)

// The store interfaces below are the slices of the repositories each service
// needs. The repositories package satisfies all of them.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByNameAndPhone(ctx context.Context, firstName, lastName, phone string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone string) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateLastLogin(ctx context.Context, id int64) error
	MarkEmailVerified(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
}

type RefreshTokenStore interface {
	CreateToken(ctx context.Context, token *models.RefreshToken) error
	GetByValue(ctx context.Context, value string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, value string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

type OneTimeTokenStore interface {
	Create(ctx context.Context, token *models.OneTimeToken) error
	GetByToken(ctx context.Context, value string) (*models.OneTimeToken, error)
	MarkUsed(ctx context.Context, id int64) error
	InvalidateForUser(ctx context.Context, userID int64) error
}

type CourseStore interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	Update(ctx context.Context, c *models.Course) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, f repositories.CourseFilter) ([]*models.Course, int64, error)
	ListByInstructor(ctx context.Context, instructorID int64, openDay *time.Time) ([]*models.Course, error)
	IncrementViews(ctx context.Context, id int64) error
	SetImage(ctx context.Context, id int64, path *string) error
}

type EnrollmentStore interface {
	Create(ctx context.Context, e *models.Enrollment) error
	Get(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID int64) (bool, error)
	Delete(ctx context.Context, studentID, courseID int64) error
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Enrollment, error)
	UpdateProgress(ctx context.Context, studentID, courseID int64, progress int, completed bool) error
}

type AssignmentStore interface {
	Create(ctx context.Context, a *models.Assignment) error
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	Update(ctx context.Context, a *models.Assignment) error
	Delete(ctx context.Context, id int64) error
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Assignment, error)
}

// PendingAssignmentStore finds coursework a student still owes.
type PendingAssignmentStore interface {
	ListPending(ctx context.Context, studentID int64, courseIDs []int64, dueFrom time.Time, limit int) ([]*models.Assignment, error)
}

type SubmissionStore interface {
	Upsert(ctx context.Context, s *models.Submission) (previousFile *string, err error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Submission, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Submission, error)
	Grade(ctx context.Context, id int64, score int, feedback string) error
}

type CourseNoticeStore interface {
	Create(ctx context.Context, n *models.CourseNotice) error
	GetByID(ctx context.Context, id int64) (*models.CourseNotice, error)
	Update(ctx context.Context, n *models.CourseNotice) error
	Delete(ctx context.Context, id int64) error
	ListByCourse(ctx context.Context, courseID int64) ([]*models.CourseNotice, error)
}

type WeeklyContentStore interface {
	Create(ctx context.Context, w *models.WeeklyContent) error
	GetByID(ctx context.Context, id int64) (*models.WeeklyContent, error)
	Update(ctx context.Context, w *models.WeeklyContent) error
	Delete(ctx context.Context, id int64) error
	ListByCourse(ctx context.Context, courseID int64) ([]*models.WeeklyContent, error)
}

type QuestionStore interface {
	Create(ctx context.Context, q *models.CourseQuestion) error
	GetByID(ctx context.Context, id int64) (*models.CourseQuestion, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.CourseQuestion, error)
	SetResolved(ctx context.Context, id int64, resolved bool) error
	Delete(ctx context.Context, id int64) error
	CreateAnswer(ctx context.Context, a *models.QuestionAnswer) error
	ListAnswers(ctx context.Context, questionID int64) ([]*models.QuestionAnswer, error)
}

type NoticeStore interface {
	Create(ctx context.Context, n *models.Notice) error
	GetByID(ctx context.Context, id int64) (*models.Notice, error)
	Update(ctx context.Context, n *models.Notice) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, targets []models.NoticeTarget, offset uint64, limit int) ([]*models.Notice, int64, error)
	IncrementViews(ctx context.Context, id int64) error
}

type CommunityStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, p *models.Post) error
	DeletePost(ctx context.Context, id int64) error
	ListPosts(ctx context.Context, f repositories.PostFilter) ([]*models.Post, int64, error)
	IncrementPostViews(ctx context.Context, id int64) error
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id int64) (*models.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]*models.Comment, error)
	SoftDeleteComment(ctx context.Context, id int64) error
}

type MessengerStore interface {
	CreateChannel(ctx context.Context, ch *models.Channel, memberIDs []int64) error
	AddMembers(ctx context.Context, channelID int64, userIDs []int64) error
	GetChannel(ctx context.Context, id int64) (*models.Channel, error)
	ListChannelsForUser(ctx context.Context, userID int64) ([]*models.Channel, error)
	IsMember(ctx context.Context, channelID, userID int64) (bool, error)
	ListMembers(ctx context.Context, channelID int64) ([]*models.User, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, channelID int64, offset uint64, limit int) ([]*models.Message, int64, error)
	MarkRead(ctx context.Context, channelID, readerID int64) (int64, error)
}

type FAQStore interface {
	ListCategories(ctx context.Context, parentID *int64) ([]*models.FAQCategory, error)
	GetCategory(ctx context.Context, id int64) (*models.FAQCategory, error)
	CreateCategory(ctx context.Context, c *models.FAQCategory) error
	DeleteCategory(ctx context.Context, id int64) error
	CountCategories(ctx context.Context) (int64, error)
	ListItems(ctx context.Context, categoryID int64) ([]*models.FAQItem, error)
	CreateItem(ctx context.Context, it *models.FAQItem) error
	DeleteItem(ctx context.Context, id int64) error
}
