//go:build !integration

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"promo-redemption/internal/infra/api/apiv1"
	"promo-redemption/internal/infra/logging"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestChain_TraceIDAndRecover(t *testing.T) {
	logger := zerolog.Nop()
	var seenTrace string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = logging.TraceIDFrom(r.Context())
		panic("boom")
	}), TraceID(&logger), RequestLog(&logger), Recover(&logger), Timeout(time.Second))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500 after panic, got %d", rec.Code)
	}
	if seenTrace != "req-1" || rec.Header().Get("X-Request-ID") != "req-1" {
		t.Errorf("trace id not propagated: ctx=%q header=%q", seenTrace, rec.Header().Get("X-Request-ID"))
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	h := Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !hasDeadline {
		t.Error("expected request context to carry a deadline")
	}
}

func TestRouter_Health(t *testing.T) {
	logger := zerolog.Nop()
	v1 := apiv1.NewServer(nil, apiv1.NewAuthManager("s"), &logger)

	t.Run("200 when dependencies answer", func(t *testing.T) {
		r := NewRouter(v1, map[string]Pinger{"postgres": pingFunc(func(context.Context) error { return nil })}, time.Second, &logger)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
	})

	t.Run("503 when a dependency is down", func(t *testing.T) {
		r := NewRouter(v1, map[string]Pinger{"redis": pingFunc(func(context.Context) error { return errors.New("down") })}, time.Second, &logger)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("want 503, got %d", rec.Code)
		}
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		r := NewRouter(v1, nil, time.Second, &logger)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rec.Code)
		}
	})
}
