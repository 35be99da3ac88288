package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/learnhub-api/internal/httputil"
)

func TestMiddleware_RequireAuth(t *testing.T) {
	tokens, err := NewJWTService(testSecret)
	require.NoError(t, err)

	userID := uuid.New()
	valid, err := tokens.CreateToken(userID, "ann@x.com", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.CreateToken(userID, "ann@x.com", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantCode   string
	}{
		{name: "bearer header", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "cookie", cookie: valid, wantStatus: http.StatusOK},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantCode: httputil.CodeMissingAuth},
		{name: "bad header", header: "Token " + valid, wantStatus: http.StatusUnauthorized, wantCode: httputil.CodeInvalidAuthHeader},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantCode: httputil.CodeTokenExpired},
		{name: "garbage", cookie: "garbage", wantStatus: http.StatusUnauthorized, wantCode: httputil.CodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID uuid.UUID
			var gotEmail string
			h := NewMiddleware(tokens).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = GetUserIDFromContext(r.Context())
				gotEmail, _ = GetUserEmailFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.cookie})
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
				return
			}
			assert.Equal(t, userID, gotID)
			assert.Equal(t, "ann@x.com", gotEmail)
		})
	}
}

func TestCheckSubject(t *testing.T) {
	owner := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDContextKey, owner)

	assert.NoError(t, CheckSubject(ctx, owner))
	assert.ErrorIs(t, CheckSubject(ctx, uuid.New()), ErrSubjectMismatch)
	assert.NoError(t, CheckSubject(context.Background(), uuid.New()))
}
