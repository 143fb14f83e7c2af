package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AssignmentController handles assignments, submissions and grading
type AssignmentController struct {
	assignmentService services.AssignmentService
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// ListAssignments lists a course's assignments
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.AssignmentResponse} "Assignments"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the course"
// @Router /courses/{id}/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.assignmentService.ListAssignments(ctx.Request.Context(), actor, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// CreateAssignment posts an assignment
// @Summary Create assignment
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param dueDate formData string false "Due date (RFC3339)"
// @Param maxScore formData int false "Maximum score, defaults to 100"
// @Param file formData file false "Attachment"
// @Success 201 {object} dto.APIResponse{data=dto.AssignmentResponse} "Assignment created"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Router /courses/{id}/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignmentRequest
	if !bindForm(ctx, &req) {
		return
	}
	file, ok := optionalFile(ctx)
	if !ok {
		return
	}

	resp, err := c.assignmentService.CreateAssignment(ctx.Request.Context(), actor, courseID, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// GetAssignment returns one assignment
// @Summary Get assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentResponse} "Assignment"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.assignmentService.GetAssignment(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// UpdateAssignment edits an assignment
// @Summary Update assignment
// @Description A new file replaces the previous attachment.
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param dueDate formData string false "Due date (RFC3339)"
// @Param maxScore formData int false "Maximum score"
// @Param file formData file false "Attachment"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentResponse} "Assignment updated"
// @Router /assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignmentRequest
	if !bindForm(ctx, &req) {
		return
	}
	file, ok := optionalFile(ctx)
	if !ok {
		return
	}

	resp, err := c.assignmentService.UpdateAssignment(ctx.Request.Context(), actor, id, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// DeleteAssignment removes an assignment
// @Summary Delete assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse "Assignment deleted"
// @Router /assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.assignmentService.DeleteAssignment(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Assignment deleted")
}

// Submit hands in work for an assignment
// @Summary Submit assignment
// @Description Creates or replaces the caller's submission. Resubmitting clears an earlier grade.
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param content formData string false "Text answer"
// @Param file formData file false "Attachment"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse} "Submitted"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled"
// @Router /assignments/{id}/submissions [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmissionRequest
	if !bindForm(ctx, &req) {
		return
	}
	file, ok := optionalFile(ctx)
	if !ok {
		return
	}

	resp, err := c.assignmentService.Submit(ctx.Request.Context(), actor, id, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// ListSubmissions lists all submissions of an assignment
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubmissionResponse} "Submissions"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Router /assignments/{id}/submissions [get]
func (c *AssignmentController) ListSubmissions(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.assignmentService.ListSubmissions(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// MySubmission returns the caller's submission
// @Summary My submission
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse} "Submission"
// @Failure 404 {object} dto.ErrorResponse "Nothing submitted yet"
// @Router /assignments/{id}/submissions/mine [get]
func (c *AssignmentController) MySubmission(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.assignmentService.MySubmission(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// Grade scores a submission
// @Summary Grade submission
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param request body dto.GradeRequest true "Score and feedback"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse} "Graded"
// @Failure 400 {object} dto.ErrorResponse "Score out of range"
// @Router /submissions/{id}/grade [put]
func (c *AssignmentController) Grade(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.GradeRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.assignmentService.Grade(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// Gradebook downloads course grades as a spreadsheet
// @Summary Download gradebook
// @Tags assignments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {file} file "Gradebook workbook"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Router /courses/{id}/gradebook.xlsx [get]
func (c *AssignmentController) Gradebook(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	body, filename, err := c.assignmentService.Gradebook(ctx.Request.Context(), actor, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, xlsxContentType, body)
}
