package services

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/repositories"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/websocket"
)

// Users

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]*models.User)}
}

func (f *fakeUsers) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.add(user)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) FindByNameAndPhone(_ context.Context, firstName, lastName, phone string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.byID {
		if u.FirstName == firstName && u.LastName == lastName && u.Phone == phone && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) mutate(id int64, fn func(u *models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, firstName, lastName, phone string) error {
	return f.mutate(id, func(u *models.User) { u.FirstName, u.LastName, u.Phone = firstName, lastName, phone })
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	return f.mutate(id, func(u *models.User) { u.Password = hash })
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id int64) error {
	return f.mutate(id, func(u *models.User) { now := time.Now(); u.LastLoginAt = &now })
}

func (f *fakeUsers) MarkEmailVerified(_ context.Context, id int64) error {
	return f.mutate(id, func(u *models.User) { u.EmailVerified, u.IsActive = true, true })
}

func (f *fakeUsers) SoftDelete(_ context.Context, id int64) error {
	return f.mutate(id, func(u *models.User) { now := time.Now(); u.IsActive = false; u.DeletedAt = &now })
}

// Refresh tokens

type fakeRefreshTokens struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeRefreshTokens) CreateToken(_ context.Context, token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = int64(len(f.tokens) + 1)
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeRefreshTokens) GetByValue(_ context.Context, value string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[value]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	if t.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	return t, nil
}

func (f *fakeRefreshTokens) RevokeToken(_ context.Context, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[value]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	return nil
}

func (f *fakeRefreshTokens) RevokeAllUserTokens(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeRefreshTokens) activeFor(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tokens {
		if t.UserID == userID && !t.IsRevoked {
			n++
		}
	}
	return n
}

// One-time tokens

type fakeOneTimeTokens struct {
	mu       sync.Mutex
	tokens   []*models.OneTimeToken
	notFound error
}

func (f *fakeOneTimeTokens) Create(_ context.Context, token *models.OneTimeToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = int64(len(f.tokens) + 1)
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeOneTimeTokens) GetByToken(_ context.Context, value string) (*models.OneTimeToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Token == value {
			cp := *t
			return &cp, nil
		}
	}
	return nil, f.notFound
}

func (f *fakeOneTimeTokens) MarkUsed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == id {
			now := time.Now()
			t.UsedAt = &now
		}
	}
	return nil
}

func (f *fakeOneTimeTokens) InvalidateForUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID && t.UsedAt == nil {
			now := time.Now()
			t.UsedAt = &now
		}
	}
	return nil
}

func (f *fakeOneTimeTokens) latestFor(userID int64) *models.OneTimeToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.tokens) - 1; i >= 0; i-- {
		if f.tokens[i].UserID == userID {
			return f.tokens[i]
		}
	}
	return nil
}

// Mailer

type sentMail struct {
	kind, to, token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) record(kind, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, to: to, token: token})
	return nil
}

func (m *fakeMailer) SendVerificationEmail(to, _, token string) error {
	return m.record("verify", to, token)
}

func (m *fakeMailer) SendWelcomeEmail(to, _ string) error {
	return m.record("welcome", to, "")
}

func (m *fakeMailer) SendPasswordResetEmail(to, _, token string) error {
	return m.record("reset", to, token)
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

// Courses and enrollments

type fakeCourses struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Course
	views  map[int64]int
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{byID: make(map[int64]*models.Course), views: make(map[int64]int)}
}

func (f *fakeCourses) Create(_ context.Context, c *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCourses) GetByID(_ context.Context, id int64) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("course not found")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourses) Update(_ context.Context, c *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCourses) Deactivate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	c.IsActive = false
	return nil
}

func (f *fakeCourses) sorted(keep func(c *models.Course) bool) []*models.Course {
	out := make([]*models.Course, 0)
	for _, c := range f.byID {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCourses) List(_ context.Context, filter repositories.CourseFilter) ([]*models.Course, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sorted(func(c *models.Course) bool {
		if filter.Category != "" && c.Category != filter.Category {
			return false
		}
		if filter.InstructorID != 0 && c.InstructorID != filter.InstructorID {
			return false
		}
		return filter.OpenOn == nil || c.IsOpen(*filter.OpenOn)
	})
	total := int64(len(all))
	start := int(filter.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeCourses) ListByInstructor(_ context.Context, instructorID int64, openDay *time.Time) ([]*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(c *models.Course) bool {
		return c.InstructorID == instructorID && (openDay == nil || c.IsOpen(*openDay))
	}), nil
}

func (f *fakeCourses) IncrementViews(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byID[id]; ok {
		c.Views++
	}
	return nil
}

func (f *fakeCourses) SetImage(_ context.Context, id int64, path *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	c.ImagePath = path
	return nil
}

type fakeEnrollments struct {
	mu      sync.Mutex
	nextID  int64
	list    []*models.Enrollment
	courses *fakeCourses
	users   *fakeUsers
}

func newFakeEnrollments(courses *fakeCourses, users *fakeUsers) *fakeEnrollments {
	return &fakeEnrollments{courses: courses, users: users}
}

func (f *fakeEnrollments) find(studentID, courseID int64) *models.Enrollment {
	for _, e := range f.list {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e
		}
	}
	return nil
}

func (f *fakeEnrollments) Create(_ context.Context, e *models.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.find(e.StudentID, e.CourseID) != nil {
		return apperrors.ErrAlreadyEnrolled
	}
	f.nextID++
	e.ID = f.nextID
	e.EnrolledAt = time.Now()
	cp := *e
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeEnrollments) Get(_ context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.find(studentID, courseID)
	if e == nil {
		return nil, apperrors.ErrNotEnrolled
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEnrollments) Exists(_ context.Context, studentID, courseID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(studentID, courseID) != nil, nil
}

func (f *fakeEnrollments) Delete(_ context.Context, studentID, courseID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.list {
		if e.StudentID == studentID && e.CourseID == courseID {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotEnrolled
}

func (f *fakeEnrollments) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Enrollment, 0)
	for _, e := range f.list {
		if e.StudentID != studentID {
			continue
		}
		cp := *e
		if c, err := f.courses.GetByID(ctx, e.CourseID); err == nil {
			cp.Course = c
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeEnrollments) ListByCourse(ctx context.Context, courseID int64) ([]*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Enrollment, 0)
	for _, e := range f.list {
		if e.CourseID != courseID {
			continue
		}
		cp := *e
		if f.users != nil {
			if u, err := f.users.GetByID(ctx, e.StudentID); err == nil {
				cp.Student = u
			}
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeEnrollments) UpdateProgress(_ context.Context, studentID, courseID int64, progress int, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.find(studentID, courseID)
	if e == nil {
		return apperrors.ErrNotEnrolled
	}
	now := time.Now()
	e.Progress, e.IsCompleted, e.LastAccessedAt = progress, completed, &now
	return nil
}

// Assignments and submissions

type fakeAssignments struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Assignment
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{byID: make(map[int64]*models.Assignment)}
}

func (f *fakeAssignments) Create(_ context.Context, a *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAssignments) GetByID(_ context.Context, id int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("assignment not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssignments) Update(_ context.Context, a *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAssignments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeAssignments) ListByCourse(_ context.Context, courseID int64) ([]*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Assignment, 0)
	for _, a := range f.byID {
		if a.CourseID == courseID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeSubmissions struct {
	mu          sync.Mutex
	nextID      int64
	list        []*models.Submission
	assignments *fakeAssignments
}

func (f *fakeSubmissions) Upsert(_ context.Context, s *models.Submission) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.list {
		if existing.AssignmentID == s.AssignmentID && existing.StudentID == s.StudentID {
			previous := existing.FilePath
			existing.Content = s.Content
			if s.FilePath != nil {
				existing.FilePath = s.FilePath
			}
			existing.Score, existing.Feedback, existing.GradedAt = nil, nil, nil
			existing.SubmittedAt = time.Now()
			s.ID, s.FilePath, s.SubmittedAt = existing.ID, existing.FilePath, existing.SubmittedAt
			s.Score, s.Feedback, s.GradedAt = nil, nil, nil
			return previous, nil
		}
	}
	f.nextID++
	s.ID = f.nextID
	s.SubmittedAt = time.Now()
	cp := *s
	f.list = append(f.list, &cp)
	return nil, nil
}

func (f *fakeSubmissions) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.list {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("submission not found")
}

func (f *fakeSubmissions) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID int64) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.list {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("submission not found")
}

func (f *fakeSubmissions) ListByAssignment(_ context.Context, assignmentID int64) ([]*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Submission, 0)
	for _, s := range f.list {
		if s.AssignmentID == assignmentID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSubmissions) ListByCourse(ctx context.Context, courseID int64) ([]*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Submission, 0)
	for _, s := range f.list {
		a, err := f.assignments.GetByID(ctx, s.AssignmentID)
		if err == nil && a.CourseID == courseID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSubmissions) Grade(_ context.Context, id int64, score int, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.list {
		if s.ID == id {
			now := time.Now()
			s.Score, s.Feedback, s.GradedAt = &score, &feedback, &now
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("submission not found")
}

// fakePending answers ListPending from the assignment and submission fakes.
type fakePending struct {
	assignments *fakeAssignments
	submissions *fakeSubmissions
}

func (f *fakePending) ListPending(ctx context.Context, studentID int64, courseIDs []int64, dueFrom time.Time, limit int) ([]*models.Assignment, error) {
	out := make([]*models.Assignment, 0)
	for _, courseID := range courseIDs {
		list, err := f.assignments.ListByCourse(ctx, courseID)
		if err != nil {
			return nil, err
		}
		for _, a := range list {
			if a.DueDate == nil || a.DueDate.Before(dueFrom) {
				continue
			}
			if _, err := f.submissions.GetByAssignmentAndStudent(ctx, a.ID, studentID); err == nil {
				continue
			}
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// File storage

type fakeStorage struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (f *fakeStorage) Save(fh *multipart.FileHeader, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fh == nil {
		return "", nil
	}
	rel := dir + "/" + strings.ToLower(fh.Filename)
	f.saved = append(f.saved, rel)
	return rel, nil
}

func (f *fakeStorage) Delete(rel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rel)
	return nil
}

func (f *fakeStorage) FullPath(rel string) (string, error) {
	return "/tmp/" + rel, nil
}

// Community

type fakeCommunity struct {
	mu       sync.Mutex
	posts    map[int64]*models.Post
	comments []*models.Comment
	nextPost int64
	nextCmt  int64
	users    *fakeUsers
}

func newFakeCommunity(users *fakeUsers) *fakeCommunity {
	return &fakeCommunity{posts: make(map[int64]*models.Post), users: users}
}

func (f *fakeCommunity) CreatePost(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPost++
	p.ID = f.nextPost
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakeCommunity) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("post not found")
	}
	cp := *p
	if u, err := f.users.GetByID(ctx, p.AuthorID); err == nil {
		cp.Author = u
	}
	for _, c := range f.comments {
		if c.PostID == id && !c.IsDeleted {
			cp.CommentCount++
		}
	}
	return &cp, nil
}

func (f *fakeCommunity) UpdatePost(_ context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakeCommunity) DeletePost(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, id)
	return nil
}

func (f *fakeCommunity) ListPosts(_ context.Context, filter repositories.PostFilter) ([]*models.Post, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Post, 0)
	for _, p := range f.posts {
		if filter.Board != "" && p.Board != filter.Board {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if !filter.AllVisible && !p.IsOpen && p.AuthorID != filter.ViewerID {
			continue
		}
		if filter.Query != "" && !strings.Contains(p.Title+" "+p.Content, filter.Query) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeCommunity) IncrementPostViews(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		p.Views++
	}
	return nil
}

func (f *fakeCommunity) CreateComment(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[c.PostID]; !ok {
		return apperrors.NewResourceNotFoundError("post not found")
	}
	f.nextCmt++
	c.ID = f.nextCmt
	c.CreatedAt = time.Now()
	cp := *c
	f.comments = append(f.comments, &cp)
	return nil
}

func (f *fakeCommunity) GetComment(_ context.Context, id int64) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.comments {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("comment not found")
}

func (f *fakeCommunity) ListComments(_ context.Context, postID int64) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Comment, 0)
	for _, c := range f.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCommunity) SoftDeleteComment(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.comments {
		if c.ID == id {
			c.IsDeleted, c.Content = true, ""
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("comment not found")
}

// Messenger

type fakeMessenger struct {
	mu       sync.Mutex
	channels map[int64]*models.Channel
	members  map[int64]map[int64]bool
	messages []*models.Message
	nextCh   int64
	users    *fakeUsers
}

func newFakeMessenger(users *fakeUsers) *fakeMessenger {
	return &fakeMessenger{channels: make(map[int64]*models.Channel), members: make(map[int64]map[int64]bool), users: users}
}

func (f *fakeMessenger) CreateChannel(_ context.Context, ch *models.Channel, memberIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCh++
	ch.ID = f.nextCh
	cp := *ch
	f.channels[ch.ID] = &cp
	f.members[ch.ID] = map[int64]bool{ch.CreatedBy: true}
	for _, id := range memberIDs {
		f.members[ch.ID][id] = true
	}
	return nil
}

func (f *fakeMessenger) AddMembers(_ context.Context, channelID int64, userIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range userIDs {
		f.members[channelID][id] = true
	}
	return nil
}

func (f *fakeMessenger) GetChannel(_ context.Context, id int64) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("channel not found")
	}
	cp := *ch
	return &cp, nil
}

func (f *fakeMessenger) ListChannelsForUser(_ context.Context, userID int64) ([]*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Channel, 0)
	for id, ch := range f.channels {
		if f.members[id][userID] {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMessenger) IsMember(_ context.Context, channelID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[channelID][userID], nil
}

func (f *fakeMessenger) ListMembers(ctx context.Context, channelID int64) ([]*models.User, error) {
	f.mu.Lock()
	ids := make([]int64, 0)
	for id := range f.members[channelID] {
		ids = append(ids, id)
	}
	f.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, err := f.users.GetByID(ctx, id); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeMessenger) CreateMessage(_ context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = int64(len(f.messages) + 1)
	m.SentAt = time.Now()
	cp := *m
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeMessenger) ListMessages(_ context.Context, channelID int64, offset uint64, limit int) ([]*models.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*models.Message, 0)
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].ChannelID == channelID {
			cp := *f.messages[i]
			all = append(all, &cp)
		}
	}
	total := int64(len(all))
	start := int(offset)
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeMessenger) MarkRead(_ context.Context, channelID, readerID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.messages {
		if m.ChannelID == channelID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []*websocket.Message
}

func (b *fakeBroadcaster) Broadcast(m *websocket.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, m)
}

// FAQ

type fakeFAQ struct {
	mu         sync.Mutex
	categories []*models.FAQCategory
	items      []*models.FAQItem
	listCalls  int
}

func (f *fakeFAQ) ListCategories(_ context.Context, parentID *int64) ([]*models.FAQCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]*models.FAQCategory, 0)
	for _, c := range f.categories {
		if (parentID == nil && c.ParentID == nil) || (parentID != nil && c.ParentID != nil && *c.ParentID == *parentID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeFAQ) GetCategory(_ context.Context, id int64) (*models.FAQCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("faq category not found")
}

func (f *fakeFAQ) CreateCategory(_ context.Context, c *models.FAQCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = int64(len(f.categories) + 1)
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeFAQ) DeleteCategory(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeFAQ) CountCategories(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.categories)), nil
}

func (f *fakeFAQ) ListItems(_ context.Context, categoryID int64) ([]*models.FAQItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.FAQItem, 0)
	for _, it := range f.items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeFAQ) CreateItem(_ context.Context, it *models.FAQItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it.ID = int64(len(f.items) + 1)
	f.items = append(f.items, it)
	return nil
}

func (f *fakeFAQ) DeleteItem(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("faq item not found")
}
