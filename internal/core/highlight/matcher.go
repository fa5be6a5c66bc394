package highlight

import (
	"math"
	"sort"

	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// 片語命中但沒有 token 命中時給的名義權重
	nominalPhraseWeight = 0.1

	fallbackMinRatio    = 0.2
	fallbackMaxResults  = 5
	fallbackMinTokenLen = 3
)

// MapIngredientsToSteps 計算每個步驟最可能提到的食材 ID（信心高者在前）
// opts 為 nil 時使用 DefaultOptions；輸入會先經過分組清理
func MapIngredientsToSteps(ingredients []IngredientGroup, instructions []InstructionGroup, opts *Options) Mapping {
	explanations := Explain(ingredients, instructions, opts)
	mapping := make(Mapping, len(explanations))
	for _, e := range explanations {
		mapping[e.StepID] = e.Selected
	}
	return mapping
}

// Explain 與 MapIngredientsToSteps 相同的比對流程，額外返回每個候選的特徵與分數
func Explain(ingredients []IngredientGroup, instructions []InstructionGroup, opts *Options) []StepExplanation {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}

	m := &matcher{
		index:  buildIngredientIndex(NormalizeIngredientGroups(ingredients)),
		opts:   o,
		scorer: o.scorer(),
		fuzzy:  newFuzzyCache(o.StrictFuzzy),
	}

	steps := BuildStepFeatures(NormalizeInstructionGroups(instructions))
	out := make([]StepExplanation, 0, len(steps))
	for i := range steps {
		out = append(out, m.matchStep(&steps[i]))
	}
	return out
}

// matcher 單次呼叫的比對狀態，不跨呼叫保留
type matcher struct {
	index  *ingredientIndex
	opts   Options
	scorer Scorer
	fuzzy  *fuzzyCache
}

func (m *matcher) matchStep(step *StepFeatures) StepExplanation {
	exp := StepExplanation{StepID: step.ID, Candidates: []Candidate{}}

	var accepted []Candidate
	for i := range m.index.items {
		ing := &m.index.items[i]
		f, ok := m.features(step, ing)
		if !ok || f.MatchedTokens == 0 {
			continue
		}
		c := Candidate{
			IngredientID: ing.ID,
			Features:     f,
			Confidence:   m.scorer.Score(f),
			Threshold:    adaptiveThreshold(m.opts.MinConfidence, f),
		}
		c.Accepted = c.Confidence >= c.Threshold && f.MatchedTokens > 0
		exp.Candidates = append(exp.Candidates, c)
		if c.Accepted {
			accepted = append(accepted, c)
		}
	}

	// 同分時保留食材原始順序（分組、項目）
	sort.SliceStable(accepted, func(a, b int) bool {
		return accepted[a].Confidence > accepted[b].Confidence
	})

	exp.Selected = make([]string, 0, len(accepted))
	for _, c := range accepted {
		exp.Selected = append(exp.Selected, c.IngredientID)
	}

	if len(exp.Selected) == 0 {
		exp.Selected = m.fallback(step)
		exp.Fallback = true
		common.LogDebug("步驟改用寬鬆比對",
			zap.String("step_id", step.ID),
			zap.Int("suggestions", len(exp.Selected)),
		)
	}
	return exp
}

// features 計算 (步驟, 食材) 特徵向量；分組不相容時返回 false
func (m *matcher) features(step *StepFeatures, ing *ProcessedIngredient) (Features, bool) {
	if !SectionsAlign(step.Section, ing.Section) {
		return Features{}, false
	}

	var (
		matched       int
		matchedWeight float64
		hasHead       bool
		usedSynonym   bool
		usedFuzzy     bool
	)

	for _, t := range ing.Terms {
		hit := false
		switch {
		case step.TokenSet[t]:
			hit = true
		case step.SynonymSet[t] || anyIn(Synonyms(t), step.TokenSet):
			// 不論從步驟端或食材端擴展，同義詞命中都給加分
			hit = true
			usedSynonym = true
		case !seasoningSet[t] && m.fuzzyHit(t, step):
			hit = true
			usedFuzzy = true
		}
		if !hit {
			continue
		}
		matched++
		matchedWeight += ing.Weights[t]
		if t == ing.HeadNoun || seasoningSet[t] {
			hasHead = true
		}
	}

	if !hasHead && ing.HeadNoun != "" {
		h := ing.HeadNoun
		hasHead = step.TokenSet[h] || step.SynonymSet[h] || anyIn(Synonyms(h), step.TokenSet)
	}

	phraseHit := false
	for _, p := range ing.Phrases {
		if containsWord(step.Text, p) || containsWord(step.TokenText, p) {
			phraseHit = true
			break
		}
	}
	if matched == 0 && phraseHit {
		matched = 1
		matchedWeight += math.Min(nominalPhraseWeight, ing.TotalWeight)
	}

	count := ing.TokenCount()
	return Features{
		OverlapRatio:   float64(matched) / float64(count),
		WeightCoverage: math.Min(1, matchedWeight/ing.TotalWeight),
		MatchedTokens:  matched,
		HasHeadNoun:    hasHead,
		PhraseHit:      phraseHit,
		SynonymHit:     usedSynonym,
		FuzzyHit:       usedFuzzy,
		UniqueHead:     m.index.uniqueHead(ing.HeadNoun),
		TokenCount:     count,
		SectionAlign:   true,
		Seasoning:      ing.Seasoning,
	}, true
}

func (m *matcher) fuzzyHit(token string, step *StepFeatures) bool {
	for _, st := range step.Tokens {
		if m.fuzzy.match(token, st) {
			return true
		}
	}
	return false
}

// fallback 寬鬆比對：忽略分組、只看長度 >= 3 的 token 的重疊比例
func (m *matcher) fallback(step *StepFeatures) []string {
	type scored struct {
		id    string
		ratio float64
	}
	var hits []scored
	for i := range m.index.items {
		ing := &m.index.items[i]
		total, overlap := 0, 0
		for _, t := range ing.Terms {
			if len(t) < fallbackMinTokenLen {
				continue
			}
			total++
			if step.TokenSet[t] {
				overlap++
			}
		}
		if total == 0 {
			continue
		}
		if ratio := float64(overlap) / float64(total); ratio >= fallbackMinRatio {
			hits = append(hits, scored{id: ing.ID, ratio: ratio})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].ratio > hits[b].ratio })
	if len(hits) > fallbackMaxResults {
		hits = hits[:fallbackMaxResults]
	}
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids
}

func anyIn(words []string, set map[string]bool) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}
