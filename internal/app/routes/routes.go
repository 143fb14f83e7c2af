package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edulearn/internal/app/controllers"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/middleware"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controllers groups every HTTP controller mounted under /api/v1.
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Course     *controllers.CourseController
	Enrollment *controllers.EnrollmentController
	Assignment *controllers.AssignmentController
	Classroom  *controllers.ClassroomController
	Notice     *controllers.NoticeController
	Community  *controllers.CommunityController
	Messenger  *controllers.MessengerController
	FAQ        *controllers.FAQController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
	db Pinger,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", healthHandler(db))

	// --- Public Auth routes ---
	authGroup := v1.Group("/auth")
	authGroup.Use(authLimiter.Middleware())
	{
		authGroup.POST("/register", ctrl.Auth.Register)
		authGroup.GET("/verify-email", ctrl.Auth.VerifyEmail)
		authGroup.POST("/resend-verification", ctrl.Auth.ResendVerification)
		authGroup.POST("/login", ctrl.Auth.Login)
		authGroup.POST("/refresh", ctrl.Auth.RefreshToken)
		authGroup.POST("/logout", ctrl.Auth.Logout)
		authGroup.POST("/forgot-password", ctrl.Auth.ForgotPassword)
		authGroup.POST("/reset-password", ctrl.Auth.ResetPassword)
		authGroup.POST("/find-email", ctrl.Auth.FindEmail)
	}

	// --- Public catalog and chatbot ---
	catalog := v1.Group("")
	catalog.Use(authMiddleware.OptionalAuth())
	{
		catalog.GET("/courses", ctrl.Course.ListCourses)
		catalog.GET("/courses/:id", ctrl.Course.GetCourse)
		catalog.GET("/faq/chatbot", ctrl.FAQ.Chatbot)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Profile endpoints stay reachable before the email is verified
	me := authenticated.Group("/users/me")
	{
		me.GET("", ctrl.User.GetProfile)
		me.PUT("", ctrl.User.UpdateProfile)
		me.PUT("/password", ctrl.User.ChangePassword)
		me.DELETE("", ctrl.User.DeleteAccount)
	}

	verified := authenticated.Group("")
	verified.Use(authMiddleware.EmailVerificationRequired())

	staff := authMiddleware.RoleRequired(models.RoleInstructor, models.RoleManager)
	student := authMiddleware.RoleRequired(models.RoleStudent)
	manager := authMiddleware.RoleRequired(models.RoleManager)

	// Courses
	courses := verified.Group("/courses")
	{
		courses.GET("/mine", staff, ctrl.Course.MyCourses)
		courses.POST("", staff, ctrl.Course.CreateCourse)
		courses.PUT("/:id", staff, ctrl.Course.UpdateCourse)
		courses.DELETE("/:id", staff, ctrl.Course.DeleteCourse)
		courses.PUT("/:id/image", staff, ctrl.Course.SetCourseImage)
		courses.DELETE("/:id/image", staff, ctrl.Course.RemoveCourseImage)

		courses.POST("/:id/enroll", student, ctrl.Enrollment.Enroll)
		courses.DELETE("/:id/enroll", student, ctrl.Enrollment.Unenroll)
		courses.PUT("/:id/progress", student, ctrl.Enrollment.UpdateProgress)
		courses.GET("/:id/students", staff, ctrl.Enrollment.Roster)

		courses.GET("/:id/assignments", ctrl.Assignment.ListAssignments)
		courses.POST("/:id/assignments", staff, ctrl.Assignment.CreateAssignment)
		courses.GET("/:id/gradebook.xlsx", staff, ctrl.Assignment.Gradebook)

		courses.GET("/:id/notices", ctrl.Classroom.ListNotices)
		courses.POST("/:id/notices", staff, ctrl.Classroom.CreateNotice)
		courses.GET("/:id/weekly", ctrl.Classroom.ListWeekly)
		courses.POST("/:id/weekly", staff, ctrl.Classroom.CreateWeekly)
		courses.GET("/:id/questions", ctrl.Classroom.ListQuestions)
		courses.POST("/:id/questions", ctrl.Classroom.CreateQuestion)
	}

	// Enrollment and timetable
	verified.GET("/enrollments", ctrl.Enrollment.MyEnrollments)
	timetable := verified.Group("/timetable")
	{
		timetable.GET("/calendar", ctrl.Enrollment.Calendar)
		timetable.GET("/dashboard", ctrl.Enrollment.Dashboard)
		timetable.GET("/export.ics", ctrl.Enrollment.ExportICS)
	}

	// Assignments and submissions
	assignments := verified.Group("/assignments")
	{
		assignments.GET("/:id", ctrl.Assignment.GetAssignment)
		assignments.PUT("/:id", staff, ctrl.Assignment.UpdateAssignment)
		assignments.DELETE("/:id", staff, ctrl.Assignment.DeleteAssignment)
		assignments.POST("/:id/submissions", student, ctrl.Assignment.Submit)
		assignments.GET("/:id/submissions", staff, ctrl.Assignment.ListSubmissions)
		assignments.GET("/:id/submissions/mine", student, ctrl.Assignment.MySubmission)
	}
	verified.PUT("/submissions/:id/grade", staff, ctrl.Assignment.Grade)

	// Course room
	verified.PUT("/course-notices/:id", staff, ctrl.Classroom.UpdateNotice)
	verified.DELETE("/course-notices/:id", staff, ctrl.Classroom.DeleteNotice)
	verified.PUT("/weekly/:id", staff, ctrl.Classroom.UpdateWeekly)
	verified.DELETE("/weekly/:id", staff, ctrl.Classroom.DeleteWeekly)
	questions := verified.Group("/questions")
	{
		questions.GET("/:id", ctrl.Classroom.GetQuestion)
		questions.DELETE("/:id", ctrl.Classroom.DeleteQuestion)
		questions.POST("/:id/answers", ctrl.Classroom.AnswerQuestion)
		questions.PUT("/:id/resolve", ctrl.Classroom.ToggleResolved)
	}

	// Site notices
	notices := verified.Group("/notices")
	{
		notices.GET("", ctrl.Notice.ListNotices)
		notices.GET("/:id", ctrl.Notice.GetNotice)
		notices.POST("", staff, ctrl.Notice.CreateNotice)
		notices.PUT("/:id", staff, ctrl.Notice.UpdateNotice)
		notices.DELETE("/:id", staff, ctrl.Notice.DeleteNotice)
	}

	// Community board
	community := verified.Group("/community/posts")
	{
		community.GET("", ctrl.Community.ListPosts)
		community.POST("", ctrl.Community.CreatePost)
		community.GET("/:id", ctrl.Community.GetPost)
		community.PUT("/:id", ctrl.Community.UpdatePost)
		community.DELETE("/:id", ctrl.Community.DeletePost)
		community.GET("/:id/comments", ctrl.Community.ListComments)
		community.POST("/:id/comments", ctrl.Community.AddComment)
	}
	verified.DELETE("/comments/:id", ctrl.Community.DeleteComment)

	// Messenger
	channels := verified.Group("/channels")
	{
		channels.GET("", ctrl.Messenger.ListChannels)
		channels.POST("", ctrl.Messenger.CreateChannel)
		channels.POST("/:id/members", ctrl.Messenger.AddMembers)
		channels.GET("/:id/messages", ctrl.Messenger.ListMessages)
		channels.POST("/:id/messages", ctrl.Messenger.SendMessage)
		channels.PUT("/:id/read", ctrl.Messenger.MarkRead)
		channels.GET("/:id/ws", ctrl.Messenger.Connect)
	}

	// FAQ management
	faq := verified.Group("/faq")
	faq.Use(manager)
	{
		faq.POST("/categories", ctrl.FAQ.CreateCategory)
		faq.DELETE("/categories/:id", ctrl.FAQ.DeleteCategory)
		faq.POST("/items", ctrl.FAQ.CreateItem)
		faq.DELETE("/items/:id", ctrl.FAQ.DeleteItem)
	}
}

// healthHandler reports database reachability
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse "Service healthy"
// @Failure 503 {object} dto.ErrorResponse "Database unreachable"
// @Router /health [get]
func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				detail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unreachable")
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok", "database": "ok"}))
	}
}
