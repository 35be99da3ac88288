package enrollment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/learnhub-api/internal/auth"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/testutil"
)

func newTestRouter(f *serviceFixture, subject *uuid.UUID) http.Handler {
	h := NewHandler(f.service)

	r := chi.NewRouter()
	if subject != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), auth.UserIDContextKey, *subject)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
	}
	r.Post("/enroll/course/{userId}/{courseId}", h.Enroll)
	r.Get("/view/enrolled/course/{id}", h.List)
	return r
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestHandler_EnrollThenList(t *testing.T) {
	f := newServiceFixture()
	router := newTestRouter(f, nil)
	u := testutil.CreateTestUser(f.users)

	enrollPath := "/enroll/course/" + u.ID.String() + "/" + strconv.FormatInt(goCourse.ID, 10)

	rr := serve(router, http.MethodPost, enrollPath)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var enrolled struct {
		Message string `json:"message"`
		User    struct {
			ID              string `json:"id"`
			CoursesEnrolled []struct {
				ID         int64   `json:"id"`
				CourseName string  `json:"coursename"`
				Price      float64 `json:"price"`
			} `json:"courses_enrolled"`
		} `json:"user"`
		Notification struct {
			Sent bool `json:"sent"`
		} `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &enrolled))
	assert.Equal(t, u.ID.String(), enrolled.User.ID)
	require.Len(t, enrolled.User.CoursesEnrolled, 1)
	assert.Equal(t, goCourse.ID, enrolled.User.CoursesEnrolled[0].ID)
	assert.Equal(t, goCourse.CourseName, enrolled.User.CoursesEnrolled[0].CourseName)
	assert.True(t, enrolled.Notification.Sent)

	rr = serve(router, http.MethodPost, enrollPath)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var errBody httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errBody))
	assert.Equal(t, httputil.CodeAlreadyEnrolled, errBody.Code)
	assert.Equal(t, "already enrolled", errBody.Error)

	rr = serve(router, http.MethodGet, "/view/enrolled/course/"+u.ID.String())
	require.Equal(t, http.StatusOK, rr.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Courses, 1)
	assert.Equal(t, goCourse.Popularity, list.Courses[0].Popularity)
}

func TestHandler_List_EmptyIsArray(t *testing.T) {
	f := newServiceFixture()
	router := newTestRouter(f, nil)
	u := testutil.CreateTestUser(f.users)

	rr := serve(router, http.MethodGet, "/view/enrolled/course/"+u.ID.String())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"courses":[]`)
}

func TestHandler_Errors(t *testing.T) {
	other := uuid.New()

	tests := []struct {
		name       string
		method     string
		path       func(id uuid.UUID) string
		subject    *uuid.UUID
		storeErr   bool
		wantStatus int
		wantCode   string
	}{
		{
			name:       "enroll malformed user id",
			method:     http.MethodPost,
			path:       func(uuid.UUID) string { return "/enroll/course/42/5" },
			wantStatus: http.StatusNotFound,
			wantCode:   httputil.CodeUserNotFound,
		},
		{
			name:       "enroll malformed course id",
			method:     http.MethodPost,
			path:       func(id uuid.UUID) string { return "/enroll/course/" + id.String() + "/abc" },
			wantStatus: http.StatusNotFound,
			wantCode:   httputil.CodeCourseNotFound,
		},
		{
			name:       "enroll unknown course",
			method:     http.MethodPost,
			path:       func(id uuid.UUID) string { return "/enroll/course/" + id.String() + "/999" },
			wantStatus: http.StatusNotFound,
			wantCode:   httputil.CodeCourseNotFound,
		},
		{
			name:       "enroll unknown user",
			method:     http.MethodPost,
			path:       func(uuid.UUID) string { return "/enroll/course/" + uuid.NewString() + "/5" },
			wantStatus: http.StatusNotFound,
			wantCode:   httputil.CodeUserNotFound,
		},
		{
			name:       "enroll with token for another user",
			method:     http.MethodPost,
			path:       func(id uuid.UUID) string { return "/enroll/course/" + id.String() + "/5" },
			subject:    &other,
			wantStatus: http.StatusUnauthorized,
			wantCode:   httputil.CodeSubjectMismatch,
		},
		{
			name:       "list unknown user",
			method:     http.MethodGet,
			path:       func(uuid.UUID) string { return "/view/enrolled/course/" + uuid.NewString() },
			wantStatus: http.StatusNotFound,
			wantCode:   httputil.CodeUserNotFound,
		},
		{
			name:       "list store failure",
			method:     http.MethodGet,
			path:       func(id uuid.UUID) string { return "/view/enrolled/course/" + id.String() },
			storeErr:   true,
			wantStatus: http.StatusInternalServerError,
			wantCode:   httputil.CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			u := testutil.CreateTestUser(f.users)
			if tt.storeErr {
				f.users.Err = assert.AnError
			}

			rr := serve(newTestRouter(f, tt.subject), tt.method, tt.path(u.ID))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotContains(t, body.Error, assert.AnError.Error())
		})
	}
}
