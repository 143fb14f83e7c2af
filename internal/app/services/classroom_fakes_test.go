package services

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
)

// Site notices

type fakeNotices struct {
	mu     sync.Mutex
	list   []*models.Notice
	nextID int64
}

func (f *fakeNotices) Create(_ context.Context, n *models.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	cp := *n
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeNotices) GetByID(_ context.Context, id int64) (*models.Notice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.list {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("notice not found")
}

func (f *fakeNotices) Update(_ context.Context, n *models.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.list {
		if existing.ID == n.ID {
			cp := *n
			f.list[i] = &cp
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("notice not found")
}

func (f *fakeNotices) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.list {
		if n.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("notice not found")
}

func (f *fakeNotices) List(_ context.Context, targets []models.NoticeTarget, offset uint64, limit int) ([]*models.Notice, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*models.Notice, 0)
	for _, n := range f.list {
		ok := targets == nil
		for _, t := range targets {
			if n.Target == t {
				ok = true
			}
		}
		if ok {
			cp := *n
			matched = append(matched, &cp)
		}
	}
	total := int64(len(matched))
	start := int(offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeNotices) IncrementViews(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.list {
		if n.ID == id {
			n.Views++
		}
	}
	return nil
}

// Course notices

type fakeCourseNotices struct {
	mu     sync.Mutex
	list   []*models.CourseNotice
	nextID int64
}

func (f *fakeCourseNotices) Create(_ context.Context, n *models.CourseNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	cp := *n
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeCourseNotices) GetByID(_ context.Context, id int64) (*models.CourseNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.list {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("course notice not found")
}

func (f *fakeCourseNotices) Update(_ context.Context, n *models.CourseNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.list {
		if existing.ID == n.ID {
			cp := *n
			f.list[i] = &cp
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("course notice not found")
}

func (f *fakeCourseNotices) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.list {
		if n.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("course notice not found")
}

func (f *fakeCourseNotices) ListByCourse(_ context.Context, courseID int64) ([]*models.CourseNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.CourseNotice, 0)
	for _, n := range f.list {
		if n.CourseID == courseID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Weekly content

type fakeWeekly struct {
	mu     sync.Mutex
	list   []*models.WeeklyContent
	nextID int64
}

func (f *fakeWeekly) Create(_ context.Context, w *models.WeeklyContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.list {
		if existing.CourseID == w.CourseID && existing.WeekNumber == w.WeekNumber {
			return apperrors.NewConflictError("content for this week already exists")
		}
	}
	f.nextID++
	w.ID = f.nextID
	cp := *w
	f.list = append(f.list, &cp)
	return nil
}

func (f *fakeWeekly) GetByID(_ context.Context, id int64) (*models.WeeklyContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.list {
		if w.ID == id {
			cp := *w
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("weekly content not found")
}

func (f *fakeWeekly) Update(_ context.Context, w *models.WeeklyContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.list {
		if existing.ID == w.ID {
			cp := *w
			f.list[i] = &cp
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("weekly content not found")
}

func (f *fakeWeekly) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.list {
		if w.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("weekly content not found")
}

func (f *fakeWeekly) ListByCourse(_ context.Context, courseID int64) ([]*models.WeeklyContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.WeeklyContent, 0)
	for _, w := range f.list {
		if w.CourseID == courseID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Q&A

type fakeQuestions struct {
	mu        sync.Mutex
	questions []*models.CourseQuestion
	answers   []*models.QuestionAnswer
	nextQ     int64
	nextA     int64
}

func (f *fakeQuestions) Create(_ context.Context, q *models.CourseQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextQ++
	q.ID = f.nextQ
	q.CreatedAt = time.Now()
	cp := *q
	f.questions = append(f.questions, &cp)
	return nil
}

func (f *fakeQuestions) GetByID(_ context.Context, id int64) (*models.CourseQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.ID == id {
			cp := *q
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("question not found")
}

func (f *fakeQuestions) ListByCourse(_ context.Context, courseID int64) ([]*models.CourseQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.CourseQuestion, 0)
	for _, q := range f.questions {
		if q.CourseID == courseID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeQuestions) SetResolved(_ context.Context, id int64, resolved bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.ID == id {
			q.IsResolved = resolved
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("question not found")
}

func (f *fakeQuestions) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, q := range f.questions {
		if q.ID == id {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("question not found")
}

func (f *fakeQuestions) CreateAnswer(_ context.Context, a *models.QuestionAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextA++
	a.ID = f.nextA
	a.CreatedAt = time.Now()
	cp := *a
	f.answers = append(f.answers, &cp)
	return nil
}

func (f *fakeQuestions) ListAnswers(_ context.Context, questionID int64) ([]*models.QuestionAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.QuestionAnswer, 0)
	for _, a := range f.answers {
		if a.QuestionID == questionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}
