package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signed(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := JWTClaims{
		Username: sub,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func protected() *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(secret, " Owner "), func(c *gin.Context) {
		c.String(http.StatusOK, Username(c))
	})
	return r
}

func get(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protected()
	future := time.Now().Add(time.Hour)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	})
	t.Run("not bearer", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Basic b3duZXI6MTIzNA==").Code)
	})
	t.Run("expired", func(t *testing.T) {
		tok := signed(t, "owner", time.Now().Add(-time.Minute))
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+tok).Code)
	})
	t.Run("wrong secret", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "owner", "exp": future.Unix(),
		}).SignedString([]byte("other"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+tok).Code)
	})
	t.Run("no expiry", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "owner"}).SignedString([]byte(secret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+tok).Code)
	})
	t.Run("other user", func(t *testing.T) {
		tok := signed(t, "intruder", future)
		assert.Equal(t, http.StatusForbidden, get(r, "/me", "Bearer "+tok).Code)
	})
	t.Run("allowed", func(t *testing.T) {
		w := get(r, "/me", "Bearer "+signed(t, "owner", future))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "owner", w.Body.String())
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = get(r, "/", "")
	minted := w.Header().Get(RequestIDHeader)
	assert.Len(t, minted, 36)
	assert.Equal(t, minted, w.Body.String())
}

func TestLimiter_Window(t *testing.T) {
	clock := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	l := NewLimiter("test", 2, time.Minute, "slow down")
	l.now = func() time.Time { return clock }

	ok, _ := l.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = l.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, end := l.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, clock.Add(time.Minute), end)

	ok, _ = l.Allow("5.6.7.8")
	assert.True(t, ok, "limits are per key")

	assert.Equal(t, 0, l.Purge())
	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Purge())

	ok, _ = l.Allow("1.2.3.4")
	assert.True(t, ok, "a new window starts after expiry")
}

func TestLimiter_Handler(t *testing.T) {
	l := NewLimiter("test", 1, time.Minute, "slow down")
	r := gin.New()
	r.GET("/", l.Handler(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/", "").Code)
	w := get(r, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "slow down")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://shop.example, https://admin.example"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://admin.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://admin.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
