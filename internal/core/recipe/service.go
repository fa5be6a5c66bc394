package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"recipe-highlighter/internal/core/cache"
	"recipe-highlighter/internal/core/highlight"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 服務基礎結構：預設比對選項與結果快取
type Service struct {
	defaults highlight.Options
	cache    cache.Cache
}

// NewService 創建新的服務基礎結構；c 為 nil 時不使用快取
func NewService(defaults highlight.Options, c cache.Cache) *Service {
	return &Service{
		defaults: defaults,
		cache:    c,
	}
}

// CacheStats 快取統計；未啟用快取時返回 nil
func (s *Service) CacheStats() *cache.Stats {
	if s.cache == nil {
		return nil
	}
	st := s.cache.Stats()
	return &st
}

// resolveOptions 合併請求選項與預設值
func (s *Service) resolveOptions(req *OptionsRequest) (highlight.Options, error) {
	opts := s.defaults
	if req == nil {
		return opts, nil
	}
	if req.MinConfidence != nil {
		mc := *req.MinConfidence
		if mc < 0 || mc > 1 {
			return opts, common.ErrInvalidRequest.Wrap(common.NewValidationError(fmt.Sprintf("minConfidence must be within [0, 1], got %v", mc)))
		}
		opts.MinConfidence = mc
	}
	if req.UseLearnedModel != nil {
		opts.UseLearnedModel = *req.UseLearnedModel
	}
	if req.StrictFuzzy != nil {
		opts.StrictFuzzy = *req.StrictFuzzy
	}
	return opts, nil
}

// getFromCache 從快取讀取並解析；未命中或失敗時返回 false
func (s *Service) getFromCache(ctx context.Context, key string, v interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("快取讀取失敗", zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		common.LogWarn("快取內容無法解析", zap.Error(err))
		return false
	}
	return true
}

// setToCache 將結果存入快取；失敗只記錄日誌
func (s *Service) setToCache(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		common.LogWarn("快取內容序列化失敗", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		common.LogWarn("快取寫入失敗", zap.Error(err))
	}
}
