package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// ---------------------------------------------------------------------------
// Config constructors
// ---------------------------------------------------------------------------

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerMinute != 60 {
		t.Errorf("RequestsPerMinute = %d, want 60", cfg.RequestsPerMinute)
	}
	if cfg.BurstSize != 10 {
		t.Errorf("BurstSize = %d, want 10", cfg.BurstSize)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}

func TestAuthRateLimitConfig(t *testing.T) {
	cfg := AuthRateLimitConfig()
	if cfg.RequestsPerMinute != 10 {
		t.Errorf("RequestsPerMinute = %d, want 10", cfg.RequestsPerMinute)
	}
	if cfg.BurstSize != 5 {
		t.Errorf("BurstSize = %d, want 5", cfg.BurstSize)
	}
}

// ---------------------------------------------------------------------------
// RateLimiter.Allow
// ---------------------------------------------------------------------------

func newTestLimiter(rpm, burst int) *RateLimiter {
	cfg := RateLimitConfig{
		RequestsPerMinute: rpm,
		BurstSize:         burst,
		CleanupInterval:   time.Hour, // Don't clean up during tests
	}
	return NewRateLimiter(cfg)
}

func TestRateLimiter_NewClientGetsFullBurst(t *testing.T) {
	rl := newTestLimiter(60, 5)
	defer rl.Stop()

	if !rl.Allow("client-a") {
		t.Error("Allow() = false for new client, want true")
	}
}

func TestRateLimiter_DeniesAfterBurstExhausted(t *testing.T) {
	burst := 3
	// Near-zero refill so the bucket does not replenish mid-test.
	rl := newTestLimiter(1, burst)
	defer rl.Stop()

	key := "burst-test"
	for i := 0; i < burst; i++ {
		if !rl.Allow(key) {
			t.Fatalf("Allow() = false on request %d within burst of %d", i+1, burst)
		}
	}
	if rl.Allow(key) {
		t.Errorf("Allow() = true after burst of %d exhausted, want false", burst)
	}
}

func TestRateLimiter_IndependentClients(t *testing.T) {
	rl := newTestLimiter(1, 1)
	defer rl.Stop()

	if !rl.Allow("client-a") {
		t.Fatal("first request for client-a denied")
	}
	if rl.Allow("client-a") {
		t.Error("client-a allowed past its burst")
	}
	// A different client has its own bucket.
	if !rl.Allow("client-b") {
		t.Error("client-b denied despite fresh bucket")
	}
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	// 6000 rpm = 100 tokens/second, so a short sleep refills at least one.
	rl := newTestLimiter(6000, 1)
	defer rl.Stop()

	key := "refill-test"
	if !rl.Allow(key) {
		t.Fatal("first request denied")
	}
	if rl.Allow(key) {
		t.Fatal("second immediate request allowed, burst should be exhausted")
	}

	time.Sleep(50 * time.Millisecond)

	if !rl.Allow(key) {
		t.Error("request denied after refill window")
	}
}

// ---------------------------------------------------------------------------
// Middleware integration
// ---------------------------------------------------------------------------

func TestRateLimiter_MiddlewareReturns429(t *testing.T) {
	rl := newTestLimiter(1, 1)
	defer rl.Stop()

	r := gin.New()
	r.Use(RateLimitMiddleware(rl))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:54321"
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", code)
	}
}

func TestRateLimiter_MiddlewareSetsRetryAfter(t *testing.T) {
	rl := newTestLimiter(60, 1)
	defer rl.Stop()

	r := gin.New()
	r.Use(RateLimitMiddleware(rl))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	var w *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.8:54321"
		r.ServeHTTP(w, req)
	}

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

// A rate above 60 requests per minute would naively round the retry hint down
// to zero seconds; the header must always advise waiting at least one.
func TestRateLimiter_RetryAfterNeverZero(t *testing.T) {
	rl := newTestLimiter(600, 1)
	defer rl.Stop()

	r := gin.New()
	r.Use(RateLimitMiddleware(rl))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	var w *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:54321"
		r.ServeHTTP(w, req)
	}

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After not an integer: %v", err)
	}
	if retryAfter < 1 {
		t.Errorf("Retry-After = %d, want at least 1", retryAfter)
	}
}
