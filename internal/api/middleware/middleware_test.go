package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-highlighter/internal/pkg/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, string(body))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestRateLimiterAllow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("a"); !ok {
			t.Fatalf("request %d should pass", i)
		}
	}
	ok, wait := rl.Allow("a")
	if ok || wait <= 0 || wait > 500*time.Millisecond {
		t.Fatalf("third request: ok=%v wait=%v", ok, wait)
	}
	if ok, _ := rl.Allow("b"); !ok {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(500 * time.Millisecond)
	if ok, _ := rl.Allow("a"); !ok {
		t.Error("a token should be refilled after window/requests")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Unix(1700000000, 0)
	rl := NewRateLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(11 * time.Second)
	rl.Allow("b")
	if _, ok := rl.clients["a"]; ok {
		t.Error("idle client should be swept")
	}
	if len(rl.clients) != 1 {
		t.Errorf("clients = %d, want 1", len(rl.clients))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(1, time.Minute))

	if w := do(r, http.MethodPost, "/echo", "x"); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/echo", "x")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if resp := decodeError(t, w); resp.Code != common.ErrCodeTooManyRequests {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestDeduplication(t *testing.T) {
	r := newEngine(Deduplication(time.Minute))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"first", `{"a":1}`, http.StatusOK},
		{"duplicate", `{"a":1}`, http.StatusTooManyRequests},
		{"different body", `{"a":2}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/echo", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if w.Code == http.StatusOK && w.Body.String() != tt.body {
				t.Errorf("body was not restored: %q", w.Body.String())
			}
		})
	}
}

func TestDeduplicatorWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d := NewDeduplicator(time.Second)
	d.now = func() time.Time { return now }

	if d.Seen("x") {
		t.Fatal("first sighting reported as duplicate")
	}
	if !d.Seen("x") {
		t.Fatal("second sighting inside the window should be a duplicate")
	}
	now = now.Add(2 * time.Second)
	if d.Seen("x") {
		t.Error("sighting after the window should pass")
	}
}

func TestDeduplicationDisabled(t *testing.T) {
	r := newEngine(Deduplication(0))
	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodPost, "/echo", "same"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	if w := do(r, http.MethodPost, "/echo", "small"); w.Code != http.StatusOK {
		t.Errorf("small body status = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/echo", strings.Repeat("x", 16))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("large body status = %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != common.ErrCodeBodyTooLarge {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestBodySizeLimitBeforeDeduplication(t *testing.T) {
	r := newEngine(BodySizeLimit(8), Deduplication(time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 16)))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery())
	w := do(r, http.MethodGet, "/panic", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != common.ErrCodeInternalError {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestTimeout(t *testing.T) {
	r := newEngine(Timeout(20 * time.Millisecond))
	w := do(r, http.MethodGet, "/slow", "")
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != common.ErrCodeGatewayTimeout {
		t.Errorf("code = %q", resp.Code)
	}
}
