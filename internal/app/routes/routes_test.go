package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edulearn/internal/app/controllers"
	"github.com/yigit/edulearn/internal/middleware"
	"github.com/yigit/edulearn/internal/pkg/auth"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, db Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "routes-test",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "edulearn.test",
	})

	ctrl := Controllers{
		Auth:       controllers.NewAuthController(nil, zerolog.Nop()),
		User:       controllers.NewUserController(nil),
		Course:     controllers.NewCourseController(nil),
		Enrollment: controllers.NewEnrollmentController(nil, nil),
		Assignment: controllers.NewAssignmentController(nil),
		Classroom:  controllers.NewClassroomController(nil),
		Notice:     controllers.NewNoticeController(nil),
		Community:  controllers.NewCommunityController(nil),
		Messenger:  controllers.NewMessengerController(nil, nil),
		FAQ:        controllers.NewFAQController(nil),
	}

	router := gin.New()
	require.NotPanics(t, func() {
		SetupRouter(router, ctrl, middleware.NewAuthMiddleware(jwtService, nil), middleware.NewRateLimiter(30, 5), db)
	})
	return router
}

func TestSetupRouter_RegistersRoutes(t *testing.T) {
	router := newTestRouter(t, nil)

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/auth/login",
		"GET /api/v1/courses",
		"GET /api/v1/courses/mine",
		"PUT /api/v1/courses/:id/image",
		"POST /api/v1/courses/:id/enroll",
		"GET /api/v1/courses/:id/gradebook.xlsx",
		"GET /api/v1/timetable/export.ics",
		"GET /api/v1/assignments/:id/submissions/mine",
		"PUT /api/v1/questions/:id/resolve",
		"DELETE /api/v1/comments/:id",
		"GET /api/v1/channels/:id/ws",
		"GET /api/v1/faq/chatbot",
		"POST /api/v1/faq/categories",
		"GET /api/v1/health",
		"GET /ping",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/api/v1/enrollments", "/api/v1/users/me", "/api/v1/channels"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestHealth(t *testing.T) {
	healthy := newTestRouter(t, pingFunc(func(context.Context) error { return nil }))
	w := httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestRouter(t, pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "SRV_002")
}
