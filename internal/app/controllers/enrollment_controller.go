package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/middleware"
)

// EnrollmentController handles enrollment and the student's timetable
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
	location          *time.Location
}

// NewEnrollmentController creates a new EnrollmentController; loc decides "this month" for the calendar
func NewEnrollmentController(enrollmentService services.EnrollmentService, loc *time.Location) *EnrollmentController {
	if loc == nil {
		loc = time.UTC
	}
	return &EnrollmentController{enrollmentService: enrollmentService, location: loc}
}

// Enroll joins a course
// @Summary Enroll in course
// @Description Enrolls the caller. Fails with SCH_001 when the course overlaps one the student already attends.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrolled"
// @Failure 403 {object} dto.ErrorResponse "Only students can enroll"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse{error=dto.ErrorDetail{details=dto.ScheduleConflictDetails}} "Schedule conflict, already enrolled, closed or full"
// @Router /courses/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.enrollmentService.Enroll(ctx.Request.Context(), actor, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// Unenroll leaves a course
// @Summary Cancel enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse "Enrollment cancelled"
// @Failure 404 {object} dto.ErrorResponse "Not enrolled"
// @Router /courses/{id}/enroll [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.enrollmentService.Unenroll(ctx.Request.Context(), actor, courseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Enrollment cancelled")
}

// MyEnrollments lists the caller's enrollments
// @Summary My enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse} "Enrollments"
// @Router /enrollments [get]
func (c *EnrollmentController) MyEnrollments(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	resp, err := c.enrollmentService.MyEnrollments(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// UpdateProgress records progress on a course
// @Summary Update progress
// @Description Sets progress (0-100). Reaching 100 marks the enrollment completed.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.ProgressRequest true "Progress"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Progress updated"
// @Failure 404 {object} dto.ErrorResponse "Not enrolled"
// @Router /courses/{id}/progress [put]
func (c *EnrollmentController) UpdateProgress(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ProgressRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.enrollmentService.UpdateProgress(ctx.Request.Context(), actor, courseID, *req.Progress)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// Roster lists a course's students
// @Summary Course roster
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.RosterEntry} "Students"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Router /courses/{id}/students [get]
func (c *EnrollmentController) Roster(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.enrollmentService.Roster(ctx.Request.Context(), actor, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// Calendar returns class days of a month
// @Summary Monthly class calendar
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} dto.APIResponse{data=dto.CalendarResponse} "Calendar"
// @Failure 400 {object} dto.ErrorResponse "Invalid year or month"
// @Router /timetable/calendar [get]
func (c *EnrollmentController) Calendar(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	now := time.Now().In(c.location)
	year, ok := queryInt(ctx, "year", now.Year())
	if !ok {
		return
	}
	month, ok := queryInt(ctx, "month", int(now.Month()))
	if !ok {
		return
	}

	resp, err := c.enrollmentService.Calendar(ctx.Request.Context(), actor, year, month)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// Dashboard returns the weekly grid and upcoming classes
// @Summary Timetable dashboard
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard"
// @Router /timetable/dashboard [get]
func (c *EnrollmentController) Dashboard(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	resp, err := c.enrollmentService.Dashboard(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// ExportICS downloads the timetable as iCalendar
// @Summary Export timetable
// @Tags timetable
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {string} string "iCalendar document"
// @Router /timetable/export.ics [get]
func (c *EnrollmentController) ExportICS(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	body, err := c.enrollmentService.ExportICS(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="timetable.ics"`)
	ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
