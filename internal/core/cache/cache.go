package cache

import (
	"context"
	"fmt"

	"recipe-highlighter/internal/infrastructure/config"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

// Cache 結果快取介面
// 未命中時 Get 返回 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Stats() Stats
	Close() error
}

// Pinger 可檢查後端連線的快取
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stats 快取統計
type Stats struct {
	Backend   string  `json:"backend"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size,omitempty"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Errors    int64   `json:"errors"`
	HitRatio  float64 `json:"hit_ratio"`
}

func hitRatio(hits, misses int64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Key 以命名空間與內容雜湊組成快取鍵
func Key(namespace string, payload []byte) string {
	return fmt.Sprintf("%s:%s", namespace, common.HashString(string(payload)))
}

// New 依設定建立快取；停用時返回 nil
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		common.LogInfo("快取已停用")
		return nil, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewManager(cfg), nil
	case "redis":
		svc, err := NewRedisService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		common.LogError("未知的快取後端", zap.String("backend", cfg.Backend))
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
