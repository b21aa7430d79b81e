package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type latencyRecorder struct {
	routes []string
	codes  []string
}

func (r *latencyRecorder) ObserveHTTP(_, route, code string, _ time.Duration) {
	r.routes = append(r.routes, route)
	r.codes = append(r.codes, code)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := &latencyRecorder{}

	r := gin.New()
	r.Use(RequestIDMiddleware(logger, rec))
	r.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})

	t.Run("echoes incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "abc-123", w.Body.String())
		assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/2", nil))
		assert.Len(t, w.Header().Get("X-Request-Id"), 36)
	})

	t.Run("records route template", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		require.NotEmpty(t, rec.routes)
		assert.Equal(t, "/items/:id", rec.routes[0])
		assert.Equal(t, "unmatched", rec.routes[len(rec.routes)-1])
		assert.Equal(t, "404", rec.codes[len(rec.codes)-1])
	})
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewClientRateLimiter(60, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/register", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/register", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))

	now = now.Add(time.Hour)
	limiter.Allow("10.0.0.3")
	limiter.mu.Lock()
	_, kept := limiter.limiters["10.0.0.1"]
	limiter.mu.Unlock()
	assert.False(t, kept)
}
