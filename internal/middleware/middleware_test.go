package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aggiereview/aggiereview/internal/app/models/dto"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.APIResponse {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleAPIError_StatusAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"validation keeps message", apperrors.NewValidationError("comment", "Comment too short"), 400, dto.ErrorCodeValidationFailed, "Comment too short"},
		{"duplicate review", apperrors.NewConflictError("You have already reviewed this professor for this course"), 409, dto.ErrorCodeConflict, "You have already reviewed this professor for this course"},
		{"email exists", apperrors.ErrEmailAlreadyExists, 409, dto.ErrorCodeConflict, "An account with this email already exists"},
		{"not found wrapped", fmt.Errorf("loading: %w", apperrors.ErrProfessorNotFound), 404, dto.ErrorCodeResourceNotFound, "professor not found"},
		{"bare not found", apperrors.ErrResourceNotFound, 404, dto.ErrorCodeResourceNotFound, "Resource not found"},
		{"unverified", apperrors.ErrEmailNotVerified, 403, dto.ErrorCodeEmailNotVerified, "Please verify your email before signing in"},
		{"forbidden", apperrors.NewForbiddenError("You can only delete your own reviews"), 403, dto.ErrorCodeForbidden, "You can only delete your own reviews"},
		{"revoked", apperrors.ErrTokenRevoked, 401, dto.ErrorCodeRevokedToken, "Token revoked"},
		{"transient", fmt.Errorf("query: %w", apperrors.ErrTransient), 503, dto.ErrorCodeServiceUnavailable, "Service temporarily unavailable"},
		{"unknown", errors.New("boom"), 500, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestHandleAPIError_ValidationField(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError("email", "bad email"))
	assert.Equal(t, "email", decode(t, w).Error.Field)
}

func newProtectedRouter(a TokenAuthenticator) *gin.Engine {
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(a).JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "token": AccessToken(c)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	const token = "aaa.bbb.ccc"

	t.Run("missing header", func(t *testing.T) {
		a := new(mockAuthenticator)
		w := httptest.NewRecorder()
		newProtectedRouter(a).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		a.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("malformed token", func(t *testing.T) {
		a := new(mockAuthenticator)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		newProtectedRouter(a).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, token).Return(&auth.Claims{UserID: "user-1", Email: "jdoe@aggies.ncat.edu"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newProtectedRouter(a).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":"user-1","token":"aaa.bbb.ccc"}`, w.Body.String())
		a.AssertExpectations(t)
	})

	t.Run("revoked token", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, token).Return(nil, apperrors.ErrTokenRevoked)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newProtectedRouter(a).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeRevokedToken, decode(t, w).Error.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// a second later one token has been refilled
	fixed = fixed.Add(time.Second)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter_SweepsIdleBucketsOncePerPeriod(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(offset time.Duration, key string) {
		rl.now = func() time.Time { return start.Add(offset) }
		rl.allow(key)
	}
	clients := func() []string {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		keys := make([]string, 0, len(rl.visitors))
		for k := range rl.visitors {
			keys = append(keys, k)
		}
		return keys
	}

	at(0, "10.0.0.1")
	at(30*time.Second, "10.0.0.2")
	assert.ElementsMatch(t, []string{"10.0.0.1", "10.0.0.2"}, clients())

	// a full period has passed: the first client has been idle too long
	at(61*time.Second, "10.0.0.3")
	assert.ElementsMatch(t, []string{"10.0.0.2", "10.0.0.3"}, clients())

	// 10.0.0.2 is idle now, but the next sweep is not due yet
	at(100*time.Second, "10.0.0.4")
	assert.ElementsMatch(t, []string{"10.0.0.2", "10.0.0.3", "10.0.0.4"}, clients())

	at(122*time.Second, "10.0.0.5")
	assert.ElementsMatch(t, []string{"10.0.0.4", "10.0.0.5"}, clients())
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
