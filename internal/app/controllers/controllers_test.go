package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/edulearn/internal/app/auth"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/app/models/dto"
	"github.com/yigit/edulearn/internal/app/services"
	"github.com/yigit/edulearn/internal/middleware"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for JWTAuth in handler tests.
func asUser(id int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRoleType, string(role))
		c.Next()
	}
}

type stubCourses struct {
	services.CourseService
	created *dto.CourseRequest
	err     error
	viewer  *authz.Actor
}

func (s *stubCourses) CreateCourse(_ context.Context, actor authz.Actor, req *dto.CourseRequest) (*dto.CourseResponse, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CourseResponse{ID: 42, Title: req.Title}, nil
}

func (s *stubCourses) GetCourse(_ context.Context, id int64, viewer *authz.Actor) (*dto.CourseResponse, error) {
	s.viewer = viewer
	return &dto.CourseResponse{ID: id, Title: "Robotics"}, nil
}

func (s *stubCourses) SetImage(_ context.Context, _ authz.Actor, id int64, file *multipart.FileHeader) (*dto.CourseResponse, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("an image file is required")
	}
	url := "/uploads/courses/" + file.Filename
	return &dto.CourseResponse{ID: id, ImageURL: &url}, nil
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

const courseBody = `{"title":"Robotics","category":"MAKING","weekday":0,"startTime":"11:00","endTime":"13:00","startDate":"2024-04-01","endDate":"2024-04-30"}`

func TestCreateCourse_ScheduleConflictIs409(t *testing.T) {
	stub := &stubCourses{err: apperrors.NewScheduleConflictError(
		`schedule overlaps "Intro to Robotics" on Monday 10:00-12:00 (2024-03-01 ~ 2024-06-30)`,
		map[string]interface{}{"conflictingCourseId": 7, "weekday": "Monday"},
	)}
	router := gin.New()
	router.POST("/courses", asUser(3, models.RoleInstructor), NewCourseController(stub).CreateCourse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(courseBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, string(dto.ErrorCodeScheduleConflict), body.Error.Code)
	assert.Contains(t, body.Error.Message, "Intro to Robotics")
	assert.EqualValues(t, 7, body.Error.Details["conflictingCourseId"])

	require.NotNil(t, stub.created)
	assert.Equal(t, 0, *stub.created.Weekday)
	assert.Equal(t, "11:00", stub.created.StartTime.String())
}

func TestCreateCourse_Created(t *testing.T) {
	stub := &stubCourses{}
	router := gin.New()
	router.POST("/courses", asUser(3, models.RoleInstructor), NewCourseController(stub).CreateCourse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(courseBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":42`)
}

func TestCreateCourse_BindingFailureIs400(t *testing.T) {
	stub := &stubCourses{}
	router := gin.New()
	router.POST("/courses", asUser(3, models.RoleInstructor), NewCourseController(stub).CreateCourse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, stub.created)
}

func TestCreateCourse_RequiresActor(t *testing.T) {
	stub := &stubCourses{}
	router := gin.New()
	router.POST("/courses", NewCourseController(stub).CreateCourse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(courseBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, stub.created)
}

func TestGetCourse_PassesOptionalViewer(t *testing.T) {
	stub := &stubCourses{}
	ctrl := NewCourseController(stub)
	router := gin.New()
	router.GET("/anon/:id", ctrl.GetCourse)
	router.GET("/me/:id", asUser(5, models.RoleStudent), ctrl.GetCourse)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon/9", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, stub.viewer)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me/9", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.viewer)
	assert.Equal(t, int64(5), stub.viewer.UserID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubEnrollments struct {
	services.EnrollmentService
	year, month int
}

func (s *stubEnrollments) Calendar(_ context.Context, _ authz.Actor, year, month int) (*dto.CalendarResponse, error) {
	s.year, s.month = year, month
	return &dto.CalendarResponse{Year: year, Month: month}, nil
}

func (s *stubEnrollments) ExportICS(context.Context, authz.Actor) (string, error) {
	return "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", nil
}

func (s *stubEnrollments) Enroll(context.Context, authz.Actor, int64) (*dto.EnrollmentResponse, error) {
	return nil, apperrors.ErrAlreadyEnrolled
}

func TestEnrollmentController(t *testing.T) {
	stub := &stubEnrollments{}
	ctrl := NewEnrollmentController(stub, nil)
	router := gin.New()
	group := router.Group("", asUser(8, models.RoleStudent))
	group.GET("/calendar", ctrl.Calendar)
	group.GET("/export.ics", ctrl.ExportICS)
	group.POST("/courses/:id/enroll", ctrl.Enroll)

	t.Run("calendar reads year and month", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar?year=2024&month=4", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2024, stub.year)
		assert.Equal(t, 4, stub.month)
	})

	t.Run("calendar rejects non-numeric month", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar?month=april", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ics download", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export.ics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable.ics")
		assert.True(t, strings.HasPrefix(w.Body.String(), "BEGIN:VCALENDAR"))
	})

	t.Run("duplicate enrollment is 409", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/courses/4/enroll", nil))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

type stubFAQ struct {
	services.FAQService
	parent *int64
	called bool
}

func (s *stubFAQ) Chatbot(_ context.Context, parentID *int64) (*dto.ChatbotResponse, error) {
	s.called = true
	s.parent = parentID
	return &dto.ChatbotResponse{Type: dto.ChatbotTypeEmpty}, nil
}

func TestChatbot_ParentIDParsing(t *testing.T) {
	stub := &stubFAQ{}
	router := gin.New()
	router.GET("/faq/chatbot", NewFAQController(stub).Chatbot)

	for _, q := range []string{"", "?parentId=", "?parentId=null"} {
		stub.parent, stub.called = nil, false
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/faq/chatbot"+q, nil))
		assert.Equal(t, http.StatusOK, w.Code, q)
		assert.True(t, stub.called, q)
		assert.Nil(t, stub.parent, q)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/faq/chatbot?parentId=3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.parent)
	assert.Equal(t, int64(3), *stub.parent)

	stub.called = false
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/faq/chatbot?parentId=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, stub.called)
}

func TestSetCourseImage_Multipart(t *testing.T) {
	router := gin.New()
	router.PUT("/courses/:id/image", asUser(3, models.RoleInstructor), NewCourseController(&stubCourses{}).SetCourseImage)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/courses/5/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imageUrl":"/uploads/courses/cover.png"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/courses/5/image", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
