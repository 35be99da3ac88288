package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/learnhub-api/internal/auth"
	"github.com/redmonkez12/learnhub-api/internal/httputil"
	"github.com/redmonkez12/learnhub-api/internal/testutil"
)

type handlerFixture struct {
	store   *testutil.MemoryUserStore
	host    *testutil.RecordingImageHost
	service *Service
	router  http.Handler
}

func newHandlerFixture(t *testing.T, maxBytes int64, subject *uuid.UUID) *handlerFixture {
	t.Helper()

	store := testutil.NewMemoryUserStore()
	host := &testutil.RecordingImageHost{}
	svc := NewService(store, host, testutil.NewLogger(), time.Second)

	in, err := NewIntake(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(svc, in, maxBytes)

	r := chi.NewRouter()
	if subject != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), auth.UserIDContextKey, *subject)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
	}
	r.Put("/user/profile/{id}", h.Update)

	return &handlerFixture{store: store, host: host, service: svc, router: r}
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "avatar.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(n int) []byte {
	return append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, n)...)
}

func TestHandler_Update(t *testing.T) {
	f := newHandlerFixture(t, 1<<20, nil)
	u := testutil.CreateTestUser(f.store)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, multipartRequest(t, "/user/profile/"+u.ID.String(),
		map[string]string{"phone_no": "555-0100", "gender": "male"}, pngBytes(64)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Message string `json:"message"`
		User    struct {
			ID       string `json:"id"`
			PhoneNo  string `json:"phone_no"`
			Gender   string `json:"gender"`
			Image    string `json:"image"`
			ImageURL string `json:"image_url"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, u.ID.String(), resp.User.ID)
	assert.Equal(t, "555-0100", resp.User.PhoneNo)
	assert.Equal(t, "male", resp.User.Gender)
	assert.Equal(t, "avatar.png", resp.User.Image)
	assert.NotEmpty(t, resp.User.ImageURL)

	require.NoError(t, f.service.Wait(context.Background()))
	uploads := f.host.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, PublicID(u.ID), uploads[0].PublicID)
	assert.Equal(t, resp.User.ImageURL, uploads[0].Path)
}

func TestHandler_Update_Errors(t *testing.T) {
	other := uuid.New()

	tests := []struct {
		name       string
		maxBytes   int64
		subject    *uuid.UUID
		path       func(id uuid.UUID) string
		fields     map[string]string
		file       []byte
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed id",
			path:       func(uuid.UUID) string { return "/user/profile/not-a-uuid" },
			file:       pngBytes(16),
			wantStatus: http.StatusNotFound,
			wantCode:   httputil.CodeUserNotFound,
		},
		{
			name:       "unknown user",
			path:       func(uuid.UUID) string { return "/user/profile/" + uuid.NewString() },
			file:       pngBytes(16),
			wantStatus: http.StatusNotFound,
			wantCode:   httputil.CodeUserNotFound,
		},
		{
			name:       "missing file",
			path:       func(id uuid.UUID) string { return "/user/profile/" + id.String() },
			fields:     map[string]string{"phone_no": "555"},
			wantStatus: http.StatusBadRequest,
			wantCode:   httputil.CodeImageRequired,
		},
		{
			name:       "not an image",
			path:       func(id uuid.UUID) string { return "/user/profile/" + id.String() },
			file:       []byte("hello, plain text"),
			wantStatus: http.StatusBadRequest,
			wantCode:   httputil.CodeInvalidImage,
		},
		{
			name:       "file too large",
			maxBytes:   128,
			path:       func(id uuid.UUID) string { return "/user/profile/" + id.String() },
			file:       pngBytes(1024),
			wantStatus: http.StatusBadRequest,
			wantCode:   httputil.CodeFileTooLarge,
		},
		{
			name:       "gender too long",
			path:       func(id uuid.UUID) string { return "/user/profile/" + id.String() },
			fields:     map[string]string{"gender": "abcdefghijklmnopqrstuvwxyz"},
			file:       pngBytes(16),
			wantStatus: http.StatusBadRequest,
			wantCode:   httputil.CodeValidationFailed,
		},
		{
			name:       "token for another user",
			subject:    &other,
			path:       func(id uuid.UUID) string { return "/user/profile/" + id.String() },
			file:       pngBytes(16),
			wantStatus: http.StatusUnauthorized,
			wantCode:   httputil.CodeSubjectMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = 1 << 20
			}
			f := newHandlerFixture(t, maxBytes, tt.subject)
			u := testutil.CreateTestUser(f.store)

			rr := httptest.NewRecorder()
			f.router.ServeHTTP(rr, multipartRequest(t, tt.path(u.ID), tt.fields, tt.file))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)

			require.NoError(t, f.service.Wait(context.Background()))
			assert.Empty(t, f.host.Uploads())
		})
	}
}
