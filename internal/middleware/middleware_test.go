package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct{}

func (fakeVerifier) VerifyToken(token string) (*service.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &service.Claims{
		Email:            "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}, nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(logger.NewNop()))
	r.Use(mw...)
	return r
}

func TestAuth(t *testing.T) {
	r := newRouter(Auth(fakeVerifier{}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c)+" "+logger.UserIDFromContext(c.Request.Context()))
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "rejected token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", status: http.StatusOK, body: "user-1 user-1"},
		{name: "case-insensitive scheme", header: "bearer good", status: http.StatusOK, body: "user-1 user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusUnauthorized {
				if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
					t.Errorf("content type = %q", ct)
				}
				return
			}
			if w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := newRouter()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestIDFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("request id not propagated: header=%q body=%q", w.Header().Get(RequestIDHeader), w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if id := w.Header().Get(RequestIDHeader); id == "" || id != w.Body.String() {
		t.Errorf("generated id mismatch: header=%q body=%q", id, w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantStatus int
		wantAllow  string
	}{
		{name: "empty list allows any", origins: nil, origin: "https://x.dev", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: "*"},
		{name: "exact match", origins: []string{"https://app.pulse.dev"}, origin: "https://app.pulse.dev", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: "https://app.pulse.dev"},
		{name: "wildcard match", origins: []string{"https://*.pulse.dev"}, origin: "https://preview.pulse.dev", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: "https://preview.pulse.dev"},
		{name: "unknown origin get", origins: []string{"https://app.pulse.dev"}, origin: "https://evil.dev", method: http.MethodGet, wantStatus: http.StatusOK, wantAllow: ""},
		{name: "unknown origin preflight", origins: []string{"https://app.pulse.dev"}, origin: "https://evil.dev", method: http.MethodOptions, wantStatus: http.StatusForbidden, wantAllow: ""},
		{name: "allowed preflight", origins: []string{"https://app.pulse.dev/"}, origin: "https://app.pulse.dev", method: http.MethodOptions, wantStatus: http.StatusNoContent, wantAllow: "https://app.pulse.dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(CORS(tt.origins))
			r.Any("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("allow origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	for _, production := range []bool{false, true} {
		r := newRouter(SecurityHeaders(production))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("X-Frame-Options") != "DENY" {
			t.Errorf("missing hardening headers: %v", w.Header())
		}
		if hsts := w.Header().Get("Strict-Transport-Security") != ""; hsts != production {
			t.Errorf("production=%v: HSTS present=%v", production, hsts)
		}
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, "test-window")
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		if ok, _ := rl.isAllowed("1.2.3.4"); ok != want {
			t.Fatalf("request %d allowed = %v, want %v", i+1, ok, want)
		}
	}
	if ok, _ := rl.isAllowed("5.6.7.8"); !ok {
		t.Error("other ip should have its own budget")
	}

	now = now.Add(30 * time.Second)
	d := rl.take("1.2.3.4")
	if d.Allowed || d.RetryAfter != 30*time.Second {
		t.Errorf("mid-window decision = %+v", d)
	}

	now = now.Add(31 * time.Second)
	if ok, count := rl.isAllowed("1.2.3.4"); !ok || count != 1 {
		t.Errorf("after window: allowed=%v count=%d", ok, count)
	}
}

type scriptedLimiter struct {
	decision Decision
	err      error
}

func (l scriptedLimiter) Allow(context.Context, string) (Decision, error) { return l.decision, l.err }
func (l scriptedLimiter) Name() string                                     { return "scripted" }

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocked", func(t *testing.T) {
		r := newRouter(RateLimitWith(scriptedLimiter{decision: Decision{Allowed: false, Count: 11, Limit: 10, RetryAfter: 1500 * time.Millisecond}}))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d", w.Code)
		}
		if w.Header().Get("Retry-After") != "2" {
			t.Errorf("Retry-After = %q, want 2", w.Header().Get("Retry-After"))
		}
		if w.Header().Get("X-RateLimit-Limit") != "10" || w.Header().Get("X-RateLimit-Remaining") != "0" {
			t.Errorf("rate headers = %v", w.Header())
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["type"] != "urn:pulse:error:rate_limit" {
			t.Errorf("type = %v", body["type"])
		}
	})

	t.Run("limiter error fails open", func(t *testing.T) {
		r := newRouter(RateLimitWith(scriptedLimiter{err: errors.New("redis down")}))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

type memoryIdempotency struct {
	mu      sync.Mutex
	records map[string]*models.IdempotencyKey
	stores  int
}

func (m *memoryIdempotency) Get(_ context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[key+"|"+route+"|"+userID], nil
}

func (m *memoryIdempotency) Store(_ context.Context, key, route, userID string, body []byte, status int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores++
	m.records[key+"|"+route+"|"+userID] = &models.IdempotencyKey{Key: key, Route: route, UserID: userID, ResponseBody: body, StatusCode: status}
	return nil
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	repo := &memoryIdempotency{records: make(map[string]*models.IdempotencyKey)}
	calls := 0

	r := newRouter(Auth(fakeVerifier{}), Idempotency(repo))
	r.POST("/entries", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"n": calls})
	})

	do := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/entries", nil)
		req.Header.Set("Authorization", "Bearer good")
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := do("k1")
	second := do("k1")

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %q, want %d %q", second.Code, second.Body.String(), first.Code, first.Body.String())
	}
	if second.Header().Get(IdempotencyReplayedHeader) != "true" {
		t.Error("replayed header missing")
	}
	if first.Header().Get(IdempotencyReplayedHeader) != "" {
		t.Error("first response must not be marked replayed")
	}

	do("")
	do("")
	if calls != 3 || repo.stores != 1 {
		t.Errorf("without a key: calls=%d stores=%d", calls, repo.stores)
	}
}

func TestIdempotencySkipsFailures(t *testing.T) {
	repo := &memoryIdempotency{records: make(map[string]*models.IdempotencyKey)}
	r := newRouter(Auth(fakeVerifier{}), Idempotency(repo))
	r.POST("/entries", func(c *gin.Context) { c.JSON(http.StatusConflict, gin.H{}) })

	req := httptest.NewRequest(http.MethodPost, "/entries", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set(IdempotencyKeyHeader, "k2")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if repo.stores != 0 {
		t.Errorf("non-2xx response was cached")
	}
}

func TestIdempotencyScopesByResourcePath(t *testing.T) {
	repo := &memoryIdempotency{records: make(map[string]*models.IdempotencyKey)}
	updated := map[string]int{}

	r := newRouter(Auth(fakeVerifier{}), Idempotency(repo))
	r.PUT("/entries/:id", func(c *gin.Context) {
		updated[c.Param("id")]++
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	put := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/entries/"+id, nil)
		req.Header.Set("Authorization", "Bearer good")
		req.Header.Set(IdempotencyKeyHeader, "same-key")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	put("a")
	b := put("b")
	if updated["a"] != 1 || updated["b"] != 1 {
		t.Fatalf("updates = %v, want one per entry", updated)
	}
	if b.Header().Get(IdempotencyReplayedHeader) != "" || !strings.Contains(b.Body.String(), `"b"`) {
		t.Errorf("second entry got a replay: %s", b.Body.String())
	}

	if again := put("a"); again.Header().Get(IdempotencyReplayedHeader) != "true" || updated["a"] != 1 {
		t.Errorf("retry on the same entry should replay, updates = %v", updated)
	}
}
