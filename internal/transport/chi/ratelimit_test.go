package chi

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	cataloguc "github.com/shoplens/catalog/internal/usecase/catalog"
	healthuc "github.com/shoplens/catalog/internal/usecase/health"
	searchuc "github.com/shoplens/catalog/internal/usecase/search"
)

func newRateLimitedFixture(maxRequests int) *fixture {
	f := &fixture{
		catalogRepo: newMockCatalogRepo(),
		searchRepo:  &mockSearchRepo{},
		extractor:   &mockExtractor{},
		pinger:      &mockPinger{},
	}

	srv := NewServer(
		cataloguc.New(f.catalogRepo),
		searchuc.New(f.searchRepo, f.extractor),
		healthuc.New(f.pinger, nil),
		zap.NewNop(),
	)
	f.router = chi.NewRouter()
	f.router.Group(func(r chi.Router) {
		r.Use(RateLimiter(maxRequests, 15*time.Minute, zap.NewNop()))
		srv.APIRoutes(r)
	})
	srv.OpsRoutes(f.router)
	return f
}

func TestRateLimiter_Returns429JSONBeyondLimit(t *testing.T) {
	f := newRateLimitedFixture(2)

	for i := 0; i < 2; i++ {
		if rec := f.do(t, http.MethodGet, "/api/products", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := f.do(t, http.MethodGet, "/api/products", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	resp := decode[rateLimitResponse](t, rec)
	if resp.Error != "Too many requests" {
		t.Errorf("error = %q, want %q", resp.Error, "Too many requests")
	}
	if resp.RetryAfter != 15 {
		t.Errorf("retryAfter = %d minutes, want 15", resp.RetryAfter)
	}
}

func TestRateLimiter_DoesNotThrottleOpsRoutes(t *testing.T) {
	f := newRateLimitedFixture(1)

	if rec := f.do(t, http.MethodGet, "/api/products", ""); rec.Code != http.StatusOK {
		t.Fatalf("first API request: status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/products", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second API request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// Health stays reachable while the API is throttled.
	for i := 0; i < 3; i++ {
		if rec := f.do(t, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
			t.Fatalf("health request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}
