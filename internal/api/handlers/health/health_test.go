package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-highlighter/internal/core/cache"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	stats := func() *cache.Stats { return &cache.Stats{Backend: "memory", Hits: 3} }
	r := newRouter(NewHandler("1.2.3", stats))

	w := get(r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Cache == nil || resp.Cache.Backend != "memory" || resp.Cache.Hits != 3 {
		t.Errorf("cache = %+v", resp.Cache)
	}
	if _, ok := resp.Runtime["goroutines"]; !ok {
		t.Error("runtime stats missing goroutines")
	}
}

func TestHealthCheckWithoutCache(t *testing.T) {
	w := get(newRouter(NewHandler("dev", nil)), "/health")
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Cache != nil {
		t.Errorf("cache = %+v, want nil", resp.Cache)
	}
}

func TestReadinessCheck(t *testing.T) {
	ok := Check{Name: "store", Probe: func(context.Context) error { return nil }}
	down := Check{Name: "redis", Probe: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name   string
		checks []Check
		want   int
	}{
		{"no checks", nil, http.StatusOK},
		{"all ok", []Check{ok}, http.StatusOK},
		{"one failing", []Check{ok, down}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newRouter(NewHandler("dev", nil, tt.checks...)), "/ready")
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Errorf("checks = %v", body.Checks)
			}
			if tt.want != http.StatusOK && body.Checks["redis"] != "connection refused" {
				t.Errorf("redis check = %q", body.Checks["redis"])
			}
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	if w := get(newRouter(NewHandler("dev", nil)), "/live"); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
