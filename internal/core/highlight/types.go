package highlight

import (
	"recipe-highlighter/internal/pkg/common"
)

// IngredientGroup 食材分組
type IngredientGroup = common.IngredientGroup

// InstructionGroup 步驟分組
type InstructionGroup = common.InstructionGroup

// Mapping 步驟 ID → 食材 ID 列表
type Mapping = common.Mapping

// DefaultMinConfidence 預設最低信心值
const DefaultMinConfidence = 0.35

// Options 比對選項
type Options struct {
	MinConfidence   float64 `json:"minConfidence"`
	UseLearnedModel bool    `json:"useLearnedModel"`
	// StrictFuzzy 編輯距離比對只用於兩邊都至少 StrictFuzzyMinLen 個字元的 token
	StrictFuzzy bool `json:"strictFuzzy,omitempty"`
	// Scorer 自訂評分策略；nil 時依 UseLearnedModel 選擇
	Scorer Scorer `json:"-"`
}

// DefaultOptions 返回預設選項
func DefaultOptions() Options {
	return Options{MinConfidence: DefaultMinConfidence}
}

// ScorerName 實際使用的評分策略名稱
func (o *Options) ScorerName() string {
	return o.scorer().Name()
}

func (o *Options) scorer() Scorer {
	if o.Scorer != nil {
		return o.Scorer
	}
	if o.UseLearnedModel {
		return LearnedScorer{}
	}
	return HeuristicScorer{}
}

// ProcessedIngredient 單次比對內建立的食材特徵，建立後不再修改
type ProcessedIngredient struct {
	ID          string
	Original    string
	Tokens      []string
	Terms       []string // 不重複 token，保留出現順序
	TokenSet    map[string]bool
	HeadNoun    string
	Phrases     []string
	Section     string
	Weights     map[string]float64
	TotalWeight float64
	Seasoning   bool
}

// TokenCount 不重複 token 數
func (p *ProcessedIngredient) TokenCount() int {
	return len(p.Terms)
}

// StepFeatures 單次比對內建立的步驟特徵
type StepFeatures struct {
	ID         string
	Raw        string
	Text       string // 小寫、去標點後的原文
	TokenText  string // 單數化 token 以空白串接
	Tokens     []string
	TokenSet   map[string]bool
	SynonymSet map[string]bool
	Phrases    []string
	Section    string
}

// Features 單一 (步驟, 食材) 配對的特徵向量
type Features struct {
	OverlapRatio   float64 `json:"overlapRatio"`
	WeightCoverage float64 `json:"weightCoverage"`
	MatchedTokens  int     `json:"matchedTokens"`
	HasHeadNoun    bool    `json:"hasHeadNoun"`
	PhraseHit      bool    `json:"phraseHit"`
	SynonymHit     bool    `json:"synonymHit"`
	FuzzyHit       bool    `json:"fuzzyHit"`
	UniqueHead     bool    `json:"uniqueHead"`
	TokenCount     int     `json:"tokenCount"`
	SectionAlign   bool    `json:"sectionAlign"`
	Seasoning      bool    `json:"seasoning"`
}

// Candidate 步驟的候選食材與評分細節
type Candidate struct {
	IngredientID string   `json:"ingredientId"`
	Features     Features `json:"features"`
	Confidence   float64  `json:"confidence"`
	Threshold    float64  `json:"threshold"`
	Accepted     bool     `json:"accepted"`
}

// StepExplanation 單一步驟的比對說明
type StepExplanation struct {
	StepID     string      `json:"stepId"`
	Candidates []Candidate `json:"candidates"`
	Selected   []string    `json:"selected"`
	Fallback   bool        `json:"fallback"`
}
