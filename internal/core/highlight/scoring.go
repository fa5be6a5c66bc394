package highlight

import (
	"math"
)

// Scorer 信心評分策略
// 新增策略只需實作此介面，不需更動比對流程
type Scorer interface {
	Name() string
	Score(f Features) float64
}

// HeuristicScorer 預設的加權啟發式評分
type HeuristicScorer struct{}

// Name 策略名稱
func (HeuristicScorer) Name() string { return "heuristic" }

// Score 計算信心值，上限 1.0
func (HeuristicScorer) Score(f Features) float64 {
	score := 0.45*f.OverlapRatio + 0.25*f.WeightCoverage + 0.07*float64(f.MatchedTokens)
	if f.HasHeadNoun {
		score += 0.18
	}
	if f.PhraseHit {
		score += 0.15
	}
	if f.SynonymHit {
		score += 0.05
	}
	if f.FuzzyHit {
		score += 0.05
	}
	if f.UniqueHead {
		score += 0.05
	}
	return math.Min(score, 1.0)
}

type logisticWeights struct {
	bias           float64
	overlapRatio   float64
	weightCoverage float64
	hasHeadNoun    float64
	phraseHit      float64
	synonymHit     float64
	fuzzyHit       float64
	uniqueHead     float64
	tokenCount     float64
	sectionAlign   float64
	seasoning      float64
}

// learnedWeights 離線擬合的固定權重
var learnedWeights = logisticWeights{
	bias:           -0.5,
	overlapRatio:   2.4,
	weightCoverage: 1.9,
	hasHeadNoun:    1.1,
	phraseHit:      0.8,
	synonymHit:     0.35,
	fuzzyHit:       0.25,
	uniqueHead:     0.3,
	tokenCount:     -0.08,
	sectionAlign:   0.15,
	seasoning:      0.4,
}

// LearnedScorer 以固定權重向量做 logistic 評分
type LearnedScorer struct{}

// Name 策略名稱
func (LearnedScorer) Name() string { return "learned" }

// Score sigmoid(bias + Σ w·f)
func (LearnedScorer) Score(f Features) float64 {
	w := learnedWeights
	z := w.bias +
		w.overlapRatio*f.OverlapRatio +
		w.weightCoverage*f.WeightCoverage +
		w.hasHeadNoun*boolToFloat(f.HasHeadNoun) +
		w.phraseHit*boolToFloat(f.PhraseHit) +
		w.synonymHit*boolToFloat(f.SynonymHit) +
		w.fuzzyHit*boolToFloat(f.FuzzyHit) +
		w.uniqueHead*boolToFloat(f.UniqueHead) +
		w.tokenCount*float64(f.TokenCount) +
		w.sectionAlign*boolToFloat(f.SectionAlign) +
		w.seasoning*boolToFloat(f.Seasoning)
	return 1 / (1 + math.Exp(-z))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// adaptiveThreshold 依食材特性調整接受門檻
// 調味料減半；三個 token 以內降到 max(0.2, min-0.15)（不會反而提高）；五個以內再減 0.05；片語命中再減 0.05
func adaptiveThreshold(minConfidence float64, f Features) float64 {
	threshold := minConfidence
	if f.Seasoning {
		threshold /= 2
	}
	switch {
	case f.TokenCount <= 3:
		threshold = math.Min(threshold, math.Max(0.2, minConfidence-0.15))
	case f.TokenCount <= 5:
		threshold -= 0.05
	}
	if f.PhraseHit {
		threshold -= 0.05
	}
	return threshold
}
