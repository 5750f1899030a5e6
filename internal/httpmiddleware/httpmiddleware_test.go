package httpmiddleware

import (
	"bytes"
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
)

func TestTokenBucketRefill(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewTokenBucket(2, 60)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "ip")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "other")
	assert.True(t, ok)

	clock = clock.Add(time.Second)
	ok, _ = l.Allow(ctx, "ip")
	assert.True(t, ok)
}

type limiterFunc func(ctx context.Context, key string) (bool, error)

func (f limiterFunc) Allow(ctx context.Context, key string) (bool, error) { return f(ctx, key) }

func serve(h ...gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", append(h, func(c *gin.Context) { c.Status(http.StatusNoContent) })...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	deny := limiterFunc(func(context.Context, string) (bool, error) { return false, nil })
	assert.Equal(t, http.StatusTooManyRequests, serve(RateLimit(deny, zerolog.Nop())).Code)

	broken := limiterFunc(func(context.Context, string) (bool, error) { return false, errors.New("redis down") })
	assert.Equal(t, http.StatusNoContent, serve(RateLimit(broken, zerolog.Nop())).Code)
}

func TestAccessLogAndHeaders(t *testing.T) {
	var buf bytes.Buffer
	w := serve(AccessLog(zerolog.New(&buf)), SecurityHeaders(), Metrics())
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, buf.String(), `"path":"/x"`)
	assert.Contains(t, buf.String(), `"status":204`)

	buf.Reset()
	serve(AccessLog(zerolog.New(&buf), "/x"))
	assert.Zero(t, buf.Len())
}
