package ratelimit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentflow/pkg/requestcontext"
)

func TestNewRejectsInvalidArgs(t *testing.T) {
	assert.Nil(t, New(0, 1, time.Minute))
	assert.Nil(t, New(1, 0, time.Minute))

	var l *Limiter
	assert.True(t, l.Allow("1.2.3.4", time.Now()))
}

func TestAllowPerKeyBurst(t *testing.T) {
	l := New(1, 2, time.Minute)
	require.NotNil(t, l)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))
	assert.True(t, l.Allow("b", now), "keys are independent")
	assert.True(t, l.Allow("a", now.Add(time.Second)), "bucket refills")
	assert.True(t, l.Allow("", now), "empty key is never limited")
}

func TestIdleKeysAreEvicted(t *testing.T) {
	l := New(100, 100, time.Second)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.Allow("stale", start)

	later := start.Add(time.Minute)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("fresh", later)
	}
	assert.Equal(t, 1, l.Len())
}

func TestMiddlewareWrites429(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := New(1, 1, time.Minute)
	h := l.Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := requestcontext.WithClientMetadata(r.Context(), "9.9.9.9", "")
		ctx = requestcontext.WithTime(ctx, fixed)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r.WithContext(ctx))
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}
