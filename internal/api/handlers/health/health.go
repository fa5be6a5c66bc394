package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-highlighter/internal/core/cache"
	"recipe-highlighter/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readinessTimeout 單次就緒檢查的時限
const readinessTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
}

// Check 就緒檢查項目
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Handler 健康檢查處理程序
type Handler struct {
	version    string
	started    time.Time
	cacheStats func() *cache.Stats
	checks     []Check
}

// NewHandler 創建新的健康檢查處理程序；cacheStats 可為 nil
func NewHandler(version string, cacheStats func() *cache.Stats, checks ...Check) *Handler {
	return &Handler{
		version:    version,
		started:    time.Now(),
		cacheStats: cacheStats,
		checks:     checks,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.cacheStats != nil {
		response.Cache = h.cacheStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：逐項檢查外部依賴
func (h *Handler) ReadinessCheck(c *gin.Context) {
	results := make(map[string]string, len(h.checks))
	ready := true
	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := check.Probe(ctx)
		cancel()
		if err != nil {
			ready = false
			results[check.Name] = err.Error()
			common.LogWarn("Readiness check failed",
				zap.String("check", check.Name),
				zap.Error(err),
			)
			continue
		}
		results[check.Name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"checks": results,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": results,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
