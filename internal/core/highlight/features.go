package highlight

import (
	"fmt"
	"strings"
)

// ingredientIndex 單次比對的食材特徵與 token 文件頻率
type ingredientIndex struct {
	items   []ProcessedIngredient
	docFreq map[string]int
}

// uniqueHead 主名詞只出現在一行食材中
func (idx *ingredientIndex) uniqueHead(head string) bool {
	return head != "" && idx.docFreq[head] == 1
}

// BuildIngredientFeatures 建立所有食材的 token 特徵
// 清理後沒有任何 token 的食材不會出現在結果中
func BuildIngredientFeatures(groups []IngredientGroup) []ProcessedIngredient {
	return buildIngredientIndex(groups).items
}

func buildIngredientIndex(groups []IngredientGroup) *ingredientIndex {
	idx := &ingredientIndex{docFreq: make(map[string]int)}

	for gi, g := range groups {
		for ii, item := range g.Items {
			tokens := Tokenize(CleanIngredientText(item))
			if len(tokens) == 0 {
				continue
			}
			set := make(map[string]bool, len(tokens))
			var terms []string
			for _, t := range tokens {
				if !set[t] {
					set[t] = true
					terms = append(terms, t)
					idx.docFreq[t]++
				}
			}
			idx.items = append(idx.items, ProcessedIngredient{
				ID:        fmt.Sprintf("%d-%d", gi, ii),
				Original:  item,
				Tokens:    tokens,
				Terms:     terms,
				TokenSet:  set,
				HeadNoun:  HeadNoun(tokens),
				Phrases:   BuildPhrases(tokens),
				Section:   g.Section,
				Seasoning: isSeasoningIngredient(set),
			})
		}
	}

	// 權重需要完整的文件頻率，第二輪再計算；依 token 順序加總確保結果可重現
	for i := range idx.items {
		ing := &idx.items[i]
		ing.Weights = make(map[string]float64, len(ing.Terms))
		total := 0.0
		for _, t := range ing.Terms {
			w := 1.0 / float64(idx.docFreq[t])
			ing.Weights[t] = w
			total += w
		}
		if total == 0 {
			total = float64(len(ing.Terms))
		}
		ing.TotalWeight = total
	}
	return idx
}

// isSeasoningIngredient 至少含一個調味料 token，其餘皆為調味料修飾詞
// 例如 "salt pepper"、"sea salt"；"red bell pepper" 不算
func isSeasoningIngredient(set map[string]bool) bool {
	found := false
	for t := range set {
		switch {
		case seasoningSet[t]:
			found = true
		case seasoningMods[t]:
		default:
			return false
		}
	}
	return found
}

// BuildStepFeatures 建立步驟特徵，步驟 ID 跨分組連續編號
func BuildStepFeatures(groups []InstructionGroup) []StepFeatures {
	var steps []StepFeatures
	n := 0
	for _, g := range groups {
		for _, raw := range g.Steps {
			text := NormalizeStepText(raw)
			tokens := Tokenize(text)
			set := make(map[string]bool, len(tokens))
			synonyms := make(map[string]bool)
			for _, t := range tokens {
				set[t] = true
				for _, v := range Synonyms(t) {
					synonyms[v] = true
				}
			}
			steps = append(steps, StepFeatures{
				ID:         fmt.Sprintf("step-%d", n),
				Raw:        raw,
				Text:       text,
				TokenText:  strings.Join(tokens, " "),
				Tokens:     tokens,
				TokenSet:   set,
				SynonymSet: synonyms,
				Phrases:    BuildPhrases(tokens),
				Section:    g.Section,
			})
			n++
		}
	}
	return steps
}

// SectionsAlign 步驟與食材的分組是否相容
// 任一方為空即相容；兩方不同時需共享一個長度大於 3 的 token
func SectionsAlign(stepSection, ingredientSection string) bool {
	a := strings.TrimSpace(stepSection)
	b := strings.TrimSpace(ingredientSection)
	if a == "" || b == "" || strings.EqualFold(a, b) {
		return true
	}
	bTokens := make(map[string]bool)
	for _, t := range Tokenize(NormalizeStepText(b)) {
		bTokens[t] = true
	}
	for _, t := range Tokenize(NormalizeStepText(a)) {
		if len(t) > 3 && bTokens[t] {
			return true
		}
	}
	return false
}
