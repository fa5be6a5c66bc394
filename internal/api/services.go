package api

import (
	"context"
	"errors"
	"fmt"

	"recipe-highlighter/internal/api/handlers/health"
	"recipe-highlighter/internal/core/cache"
	"recipe-highlighter/internal/core/convert"
	"recipe-highlighter/internal/core/highlight"
	recipeService "recipe-highlighter/internal/core/recipe"
	"recipe-highlighter/internal/infrastructure/config"
	"recipe-highlighter/internal/infrastructure/store"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

// Services 路由使用的服務與其底層資源
type Services struct {
	Highlight  *recipeService.HighlightService
	Evaluation *recipeService.EvaluationService
	Convert    *recipeService.ConvertService
	Checks     []health.Check

	closers []func() error
}

// NewServices 依設定建立快取、評估紀錄與各項服務
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{}

	c, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	if c != nil {
		s.closers = append(s.closers, c.Close)
		if p, ok := c.(cache.Pinger); ok {
			s.Checks = append(s.Checks, health.Check{Name: "cache", Probe: p.Ping})
		}
	}

	var recorder recipeService.RunRecorder
	if cfg.Eval.HistoryDB != "" {
		st, err := store.Open(cfg.Eval.HistoryDB)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to open evaluation history: %w", err)
		}
		s.closers = append(s.closers, st.Close)
		s.Checks = append(s.Checks, health.Check{Name: "history", Probe: st.Ping})
		recorder = st
	}

	var provider convert.Provider
	if cfg.OpenRouter.Enabled {
		provider = convert.NewOpenRouterProvider(cfg.OpenRouter)
	}

	defaults := highlight.Options{
		MinConfidence:   cfg.Highlight.MinConfidence,
		UseLearnedModel: cfg.Highlight.UseLearnedModel,
		StrictFuzzy:     cfg.Highlight.StrictFuzzy,
	}
	base := recipeService.NewService(defaults, c)
	s.Highlight = recipeService.NewHighlightService(base)
	s.Evaluation = recipeService.NewEvaluationService(base, cfg.Eval.Workers, recorder)
	s.Convert = recipeService.NewConvertService(convert.NewConverter(provider, c))

	common.LogInfo("Services initialized",
		zap.Bool("cache_enabled", c != nil),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("history_enabled", recorder != nil),
		zap.Bool("convert_provider", provider != nil),
		zap.Float64("min_confidence", defaults.MinConfidence),
		zap.Int("eval_workers", cfg.Eval.Workers),
	)
	return s, nil
}

// CacheStats 快取統計；未啟用快取時返回 nil
func (s *Services) CacheStats() *cache.Stats {
	if s.Highlight == nil {
		return nil
	}
	return s.Highlight.CacheStats()
}

// Close 依建立的相反順序釋放資源
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
