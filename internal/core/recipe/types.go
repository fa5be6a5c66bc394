package recipe

import (
	"recipe-highlighter/internal/core/convert"
	"recipe-highlighter/internal/core/evaluation"
	"recipe-highlighter/internal/core/highlight"
	"recipe-highlighter/internal/pkg/common"
)

// OptionsRequest 請求中的比對選項；省略的欄位使用服務預設值
type OptionsRequest struct {
	MinConfidence   *float64 `json:"minConfidence,omitempty"`
	UseLearnedModel *bool    `json:"useLearnedModel,omitempty"`
	StrictFuzzy     *bool    `json:"strictFuzzy,omitempty"`
}

// HighlightRequest 食材標示請求
type HighlightRequest struct {
	Ingredients  []common.IngredientGroup  `json:"ingredients"`
	Instructions []common.InstructionGroup `json:"instructions"`
	Options      *OptionsRequest           `json:"options,omitempty"`
	Explain      bool                      `json:"explain,omitempty"`
}

// HighlightResponse 食材標示結果
// 回傳清理後的分組，讓呼叫端能以 ID 找回原文
type HighlightResponse struct {
	Mapping      common.Mapping              `json:"mapping"`
	Ingredients  []common.IngredientGroup    `json:"ingredients"`
	Instructions []common.InstructionGroup   `json:"instructions"`
	Explanations []highlight.StepExplanation `json:"explanations,omitempty"`
	Scorer       string                      `json:"scorer"`
	CacheHit     bool                        `json:"cache_hit"`
}

// NormalizeRequest 分組清理請求
type NormalizeRequest struct {
	Ingredients  []common.IngredientGroup  `json:"ingredients"`
	Instructions []common.InstructionGroup `json:"instructions"`
}

// NormalizeResponse 分組清理結果
type NormalizeResponse struct {
	Ingredients  []common.IngredientGroup  `json:"ingredients"`
	Instructions []common.InstructionGroup `json:"instructions"`
}

// EvaluateRequest 批次評估請求
type EvaluateRequest struct {
	Recipes []common.Dataset `json:"recipes"`
	Options *OptionsRequest  `json:"options,omitempty"`
	Record  bool             `json:"record,omitempty"`
}

// EvaluateResponse 批次評估結果
type EvaluateResponse struct {
	*evaluation.Report
	RunID string `json:"run_id,omitempty"`
}

// ConvertRequest 單位換算請求
type ConvertRequest struct {
	Line  string   `json:"line"`
	Lines []string `json:"lines,omitempty"`
}

// ConvertResponse 單位換算結果
type ConvertResponse struct {
	Results []convert.Result `json:"results"`
}
