package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit-app/service-booking/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(jwt *auth.JWTManager, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()), RequestIDMiddleware(), AuthMiddleware(jwt))
	r.Use(extra...)
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Minute)
	r := newRouter(jwt)
	userID := uuid.New()
	token, err := jwt.GenerateAccessToken(userID, auth.RoleUser)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer nope")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Minute)
	r := newRouter(jwt, RequireRole(auth.RoleAdmin))

	userToken, _ := jwt.GenerateAccessToken(uuid.New(), auth.RoleUser)
	adminToken, _ := jwt.GenerateAccessToken(uuid.New(), auth.RoleAdmin)

	for token, want := range map[string]int{userToken: http.StatusForbidden, adminToken: http.StatusOK} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Minute)
	r := newRouter(jwt, RateLimitMiddleware(NewRateLimiter(0.001, 2)))

	token, _ := jwt.GenerateAccessToken(uuid.New(), auth.RoleUser)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other, _ := jwt.GenerateAccessToken(uuid.New(), auth.RoleUser)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_EvictsIdleCallers(t *testing.T) {
	l := NewRateLimiter(1, 1)
	current := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))
	assert.Equal(t, 2, l.Len())

	current = current.Add(defaultLimiterIdleTTL / 2)
	l.Allow("b")

	current = current.Add(defaultLimiterIdleTTL * 3 / 4)
	assert.True(t, l.Allow("c"))
	assert.Equal(t, 2, l.Len())
	assert.NotContains(t, l.limiters, "a")
	assert.Contains(t, l.limiters, "b")
	assert.True(t, l.Allow("a"))
}
