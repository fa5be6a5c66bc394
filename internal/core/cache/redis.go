package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"recipe-highlighter/internal/infrastructure/config"
	"recipe-highlighter/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "highlighter:"

// RedisService Redis 快取服務，可在多個實例間共用結果
type RedisService struct {
	client *redis.Client
	ttl    time.Duration

	hits     int64
	misses   int64
	failures int64
}

// NewRedisService 創建 Redis 快取服務並測試連接
func NewRedisService(ctx context.Context, cfg config.CacheConfig) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	common.LogInfo("Redis 快取已連接", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return &RedisService{client: client, ttl: cfg.TTL}, nil
}

// Get 獲取快取
func (s *RedisService) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss("redis", key)
			return nil, common.ErrCacheMiss
		}
		atomic.AddInt64(&s.failures, 1)
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogCacheHit("redis", key)
	return data, nil
}

// Set 設置快取
func (s *RedisService) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		atomic.AddInt64(&s.failures, 1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取本實例的命中統計；容量由 Redis 管理
func (s *RedisService) Stats() Stats {
	hits := atomic.LoadInt64(&s.hits)
	misses := atomic.LoadInt64(&s.misses)
	return Stats{
		Backend:  "redis",
		Hits:     hits,
		Misses:   misses,
		Errors:   atomic.LoadInt64(&s.failures),
		HitRatio: hitRatio(hits, misses),
	}
}

// Close 關閉連接
func (s *RedisService) Close() error {
	return s.client.Close()
}

// Ping 檢查 Redis 連線
func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
