package recipe

import (
	"context"
	"encoding/json"
	"time"

	"recipe-highlighter/internal/core/cache"
	"recipe-highlighter/internal/core/highlight"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

// HighlightService 食材標示服務
type HighlightService struct {
	*Service
}

// NewHighlightService 創建新的食材標示服務
func NewHighlightService(base *Service) *HighlightService {
	return &HighlightService{Service: base}
}

// Highlight 清理分組後計算每個步驟提到的食材
// 相同輸入與選項的結果會被快取
func (s *HighlightService) Highlight(ctx context.Context, req *HighlightRequest) (*HighlightResponse, error) {
	if req == nil {
		return nil, common.ErrInvalidRequest
	}
	opts, err := s.resolveOptions(req.Options)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ingredients := highlight.NormalizeIngredientGroups(req.Ingredients)
	instructions := highlight.NormalizeInstructionGroups(req.Instructions)

	key := highlightCacheKey(ingredients, instructions, opts, req.Explain)
	var cached HighlightResponse
	if key != "" && s.getFromCache(ctx, key, &cached) {
		cached.CacheHit = true
		return &cached, nil
	}

	resp := &HighlightResponse{
		Ingredients:  ingredients,
		Instructions: instructions,
		Scorer:       opts.ScorerName(),
	}
	if resp.Ingredients == nil {
		resp.Ingredients = []common.IngredientGroup{}
	}
	if resp.Instructions == nil {
		resp.Instructions = []common.InstructionGroup{}
	}

	if req.Explain {
		resp.Explanations = highlight.Explain(req.Ingredients, req.Instructions, &opts)
		resp.Mapping = make(common.Mapping, len(resp.Explanations))
		for _, e := range resp.Explanations {
			resp.Mapping[e.StepID] = e.Selected
		}
	} else {
		resp.Mapping = highlight.MapIngredientsToSteps(req.Ingredients, req.Instructions, &opts)
	}

	common.LogInfo("食材標示完成",
		zap.Int("ingredients", common.CountIngredients(ingredients)),
		zap.Int("steps", common.CountSteps(instructions)),
		zap.String("scorer", resp.Scorer),
		zap.Float64("min_confidence", opts.MinConfidence),
		zap.Duration("duration", time.Since(start)),
	)

	if key != "" {
		s.setToCache(ctx, key, resp)
	}
	return resp, nil
}

// Normalize 只清理分組，不做比對
func (s *HighlightService) Normalize(req *NormalizeRequest) (*NormalizeResponse, error) {
	if req == nil {
		return nil, common.ErrInvalidRequest
	}
	resp := &NormalizeResponse{
		Ingredients:  highlight.NormalizeIngredientGroups(req.Ingredients),
		Instructions: highlight.NormalizeInstructionGroups(req.Instructions),
	}
	if resp.Ingredients == nil {
		resp.Ingredients = []common.IngredientGroup{}
	}
	if resp.Instructions == nil {
		resp.Instructions = []common.InstructionGroup{}
	}
	return resp, nil
}

// highlightCacheKey 以清理後的輸入與選項組成快取鍵；序列化失敗時返回空字串
func highlightCacheKey(ingredients []common.IngredientGroup, instructions []common.InstructionGroup, opts highlight.Options, explain bool) string {
	payload, err := json.Marshal(struct {
		Ingredients     []common.IngredientGroup  `json:"i"`
		Instructions    []common.InstructionGroup `json:"s"`
		MinConfidence   float64                   `json:"c"`
		UseLearnedModel bool                      `json:"l"`
		StrictFuzzy     bool                      `json:"f"`
		Explain         bool                      `json:"e"`
	}{ingredients, instructions, opts.MinConfidence, opts.UseLearnedModel, opts.StrictFuzzy, explain})
	if err != nil {
		common.LogWarn("無法產生快取鍵", zap.Error(err))
		return ""
	}
	return cache.Key("highlight", payload)
}
