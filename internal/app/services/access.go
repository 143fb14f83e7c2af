package services

import (
	"context"
	"time"

	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
)

// courseAccess loads a course together with the facts authorization needs.
type courseAccess struct {
	courses     CourseStore
	enrollments EnrollmentStore
	authorizer  *authz.Authorizer
}

func (a courseAccess) resource(ctx context.Context, actor authz.Actor, course *models.Course) (authz.Resource, error) {
	res := authz.Resource{CourseInstructorID: course.InstructorID}
	if actor.Role == models.RoleStudent {
		enrolled, err := a.enrollments.Exists(ctx, actor.UserID, course.ID)
		if err != nil {
			return res, err
		}
		res.Enrolled = enrolled
	}
	return res, nil
}

// require loads the course and checks that actor may perform action on it.
func (a courseAccess) require(ctx context.Context, actor authz.Actor, action authz.Action, courseID int64) (*models.Course, error) {
	course, err := a.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	res, err := a.resource(ctx, actor, course)
	if err != nil {
		return nil, err
	}
	if err := a.authorizer.Require(actor, action, res); err != nil {
		return nil, err
	}
	return course, nil
}

// dayIn returns the calendar day of t in loc as UTC midnight, matching how
// DATE columns are scanned.
func dayIn(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
