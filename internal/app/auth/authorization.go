// Package auth holds the role and ownership rules shared by every service.
package auth

import (
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
)

// Effect is the outcome of an authorization decision.
type Effect int

const (
	Deny Effect = iota
	Allow
)

// Action names what an actor is trying to do.
type Action string

const (
	// ActionCreateCourse opens a new course.
	ActionCreateCourse Action = "course:create"
	// ActionEnroll joins a course as a student.
	ActionEnroll Action = "course:enroll"
	// ActionManageCourse covers the course itself and everything its instructor curates:
	// notices, weekly content, assignments, grading and the roster.
	ActionManageCourse Action = "course:manage"
	// ActionViewCourseRoom reads course-private material.
	ActionViewCourseRoom Action = "course:view"
	// ActionSubmit hands in work for a course.
	ActionSubmit Action = "course:submit"
	// ActionResolveQuestion toggles a Q&A thread's resolved flag.
	ActionResolveQuestion Action = "question:resolve"
	// ActionEdit changes an owned resource; managers may edit anything.
	ActionEdit Action = "resource:edit"
	// ActionAuthorEdit changes an owned resource with no manager override.
	ActionAuthorEdit Action = "resource:author-edit"
	// ActionDelete removes an owned resource; managers may delete anything.
	ActionDelete Action = "resource:delete"
	// ActionView reads a resource that may be private to its owner.
	ActionView Action = "resource:view"
	// ActionPublishNotice posts a site-wide notice.
	ActionPublishNotice Action = "notice:publish"
	// ActionManageFAQ edits the chatbot knowledge base.
	ActionManageFAQ Action = "faq:manage"
	// ActionManageChannel invites members to a channel.
	ActionManageChannel Action = "channel:manage"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID int64
	Role   models.RoleType
}

// IsManager reports whether the actor holds the manager role.
func (a Actor) IsManager() bool { return a.Role == models.RoleManager }

// Resource carries the facts a decision depends on. Zero values mean "not applicable".
type Resource struct {
	OwnerID            int64
	CourseInstructorID int64
	Enrolled           bool
	Public             bool
	Member             bool
}

// Authorizer decides whether an actor may perform an action on a resource.
type Authorizer struct{}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// Decide returns Allow or Deny. It never consults storage; callers load the
// resource facts first.
func (z *Authorizer) Decide(actor Actor, action Action, res Resource) Effect {
	if actor.UserID <= 0 || !actor.Role.Valid() {
		return Deny
	}

	owner := res.OwnerID != 0 && res.OwnerID == actor.UserID
	teaches := res.CourseInstructorID != 0 && res.CourseInstructorID == actor.UserID

	if action == ActionAuthorEdit {
		return effect(owner)
	}
	if actor.IsManager() && action != ActionEnroll && action != ActionSubmit {
		return Allow
	}

	switch action {
	case ActionCreateCourse, ActionPublishNotice:
		return effect(actor.Role == models.RoleInstructor)
	case ActionEnroll:
		return effect(actor.Role == models.RoleStudent)
	case ActionManageCourse:
		return effect(teaches)
	case ActionViewCourseRoom:
		return effect(teaches || res.Enrolled)
	case ActionSubmit:
		return effect(actor.Role == models.RoleStudent && res.Enrolled)
	case ActionResolveQuestion:
		return effect(owner || teaches)
	case ActionEdit, ActionDelete:
		return effect(owner)
	case ActionView:
		return effect(res.Public || owner)
	case ActionManageChannel:
		return effect(owner)
	case ActionManageFAQ:
		return Deny
	}
	return Deny
}

// Require turns a Deny into apperrors.ErrPermissionDenied.
func (z *Authorizer) Require(actor Actor, action Action, res Resource) error {
	if z.Decide(actor, action, res) == Allow {
		return nil
	}
	return apperrors.ErrPermissionDenied
}

func effect(ok bool) Effect {
	if ok {
		return Allow
	}
	return Deny
}
