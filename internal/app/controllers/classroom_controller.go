package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/middleware"
)

// ClassroomController serves the course room: notices, weekly material and Q&A
type ClassroomController struct {
	classroomService services.ClassroomService
}

// NewClassroomController creates a new ClassroomController
func NewClassroomController(classroomService services.ClassroomService) *ClassroomController {
	return &ClassroomController{classroomService: classroomService}
}

// ListNotices lists a course's notices
// @Summary List course notices
// @Description Pinned notices first, then newest
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CourseNotice} "Notices"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the course"
// @Router /courses/{id}/notices [get]
func (c *ClassroomController) ListNotices(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.classroomService.ListNotices(ctx.Request.Context(), actor, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// CreateNotice posts a course notice
// @Summary Create course notice
// @Tags course-room
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CourseNoticeRequest true "Notice"
// @Success 201 {object} dto.APIResponse{data=models.CourseNotice} "Notice created"
// @Failure 403 {object} dto.ErrorResponse "Not the course instructor"
// @Router /courses/{id}/notices [post]
func (c *ClassroomController) CreateNotice(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CourseNoticeRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.classroomService.CreateNotice(ctx.Request.Context(), actor, courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// UpdateNotice edits a course notice
// @Summary Update course notice
// @Tags course-room
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Param request body dto.CourseNoticeRequest true "Notice"
// @Success 200 {object} dto.APIResponse{data=models.CourseNotice} "Notice updated"
// @Router /course-notices/{id} [put]
func (c *ClassroomController) UpdateNotice(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CourseNoticeRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.classroomService.UpdateNotice(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// DeleteNotice removes a course notice
// @Summary Delete course notice
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse "Notice deleted"
// @Router /course-notices/{id} [delete]
func (c *ClassroomController) DeleteNotice(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.classroomService.DeleteNotice(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Notice deleted")
}

// ListWeekly lists weekly material ordered by week
// @Summary List weekly content
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.WeeklyContent} "Weekly content"
// @Router /courses/{id}/weekly [get]
func (c *ClassroomController) ListWeekly(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.classroomService.ListWeekly(ctx.Request.Context(), actor, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// CreateWeekly adds material for a week
// @Summary Create weekly content
// @Tags course-room
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param weekNumber formData int true "Week number"
// @Param title formData string true "Title"
// @Param content formData string false "Body"
// @Param videoUrl formData string false "Video link"
// @Param file formData file false "Material"
// @Success 201 {object} dto.APIResponse{data=models.WeeklyContent} "Content created"
// @Failure 409 {object} dto.ErrorResponse "Week already has content"
// @Router /courses/{id}/weekly [post]
func (c *ClassroomController) CreateWeekly(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.WeeklyContentRequest
	if !bindForm(ctx, &req) {
		return
	}
	file, ok := optionalFile(ctx)
	if !ok {
		return
	}
	resp, err := c.classroomService.CreateWeekly(ctx.Request.Context(), actor, courseID, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// UpdateWeekly edits weekly material
// @Summary Update weekly content
// @Tags course-room
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Weekly content ID"
// @Param weekNumber formData int true "Week number"
// @Param title formData string true "Title"
// @Param content formData string false "Body"
// @Param videoUrl formData string false "Video link"
// @Param file formData file false "Material"
// @Success 200 {object} dto.APIResponse{data=models.WeeklyContent} "Content updated"
// @Router /weekly/{id} [put]
func (c *ClassroomController) UpdateWeekly(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.WeeklyContentRequest
	if !bindForm(ctx, &req) {
		return
	}
	file, ok := optionalFile(ctx)
	if !ok {
		return
	}
	resp, err := c.classroomService.UpdateWeekly(ctx.Request.Context(), actor, id, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// DeleteWeekly removes weekly material and its file
// @Summary Delete weekly content
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Weekly content ID"
// @Success 200 {object} dto.APIResponse "Content deleted"
// @Router /weekly/{id} [delete]
func (c *ClassroomController) DeleteWeekly(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.classroomService.DeleteWeekly(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Weekly content deleted")
}

// ListQuestions lists Q&A threads
// @Summary List questions
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.QuestionResponse} "Questions"
// @Router /courses/{id}/questions [get]
func (c *ClassroomController) ListQuestions(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.classroomService.ListQuestions(ctx.Request.Context(), actor, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// CreateQuestion opens a Q&A thread
// @Summary Ask a question
// @Tags course-room
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.QuestionRequest true "Question"
// @Success 201 {object} dto.APIResponse{data=dto.QuestionResponse} "Question created"
// @Router /courses/{id}/questions [post]
func (c *ClassroomController) CreateQuestion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.QuestionRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.classroomService.CreateQuestion(ctx.Request.Context(), actor, courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// GetQuestion returns a thread with its answers
// @Summary Get question
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse{data=dto.QuestionResponse} "Question"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /questions/{id} [get]
func (c *ClassroomController) GetQuestion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.classroomService.GetQuestion(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// DeleteQuestion removes a thread
// @Summary Delete question
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse "Question deleted"
// @Router /questions/{id} [delete]
func (c *ClassroomController) DeleteQuestion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.classroomService.DeleteQuestion(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondMessage(ctx, "Question deleted")
}

// AnswerQuestion replies to a thread
// @Summary Answer question
// @Tags course-room
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body dto.AnswerRequest true "Answer"
// @Success 201 {object} dto.APIResponse{data=dto.QuestionResponse} "Thread with the new answer"
// @Router /questions/{id}/answers [post]
func (c *ClassroomController) AnswerQuestion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AnswerRequest
	if !bindJSON(ctx, &req) {
		return
	}
	resp, err := c.classroomService.AnswerQuestion(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp)
}

// ToggleResolved flips a thread's resolved flag
// @Summary Toggle resolved
// @Tags course-room
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse{data=dto.QuestionResponse} "Question"
// @Failure 403 {object} dto.ErrorResponse "Not the author or course instructor"
// @Router /questions/{id}/resolve [put]
func (c *ClassroomController) ToggleResolved(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.classroomService.ToggleResolved(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}
