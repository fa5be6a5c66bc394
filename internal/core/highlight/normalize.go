package highlight

import (
	"strings"
	"unicode"
)

const maxHeadingWords = 6

// CleanSectionLabel 清理分組標題
// 去除 "section:" 前綴與結尾冒號/句點，通用標題（如 "Ingredients"）清空
func CleanSectionLabel(label string) string {
	s := strings.TrimSpace(label)
	if len(s) >= len("section:") && strings.EqualFold(s[:len("section:")], "section:") {
		s = strings.TrimSpace(s[len("section:"):])
	}
	s = strings.TrimSpace(strings.TrimRight(s, ":."))
	if IsGenericSection(s) {
		return ""
	}
	return s
}

// NormalizeIngredientGroups 清理食材分組
// 分組數量與順序保持不變（食材 ID 依位置決定），僅在冒號結尾的標題行處拆分
// 標題位於分組開頭時只作為標籤，呼叫端已有標籤則保留原標籤
func NormalizeIngredientGroups(groups []IngredientGroup) []IngredientGroup {
	out := make([]IngredientGroup, 0, len(groups))
	for _, g := range groups {
		rawLabel := strings.TrimSpace(g.Section)
		section := CleanSectionLabel(g.Section)
		current := IngredientGroup{Section: section, Items: []string{}}

		for _, item := range g.Items {
			trimmed := strings.TrimSpace(item)
			if isSectionEcho(trimmed, rawLabel, section) {
				continue
			}
			if isIngredientHeading(trimmed) {
				label := CleanSectionLabel(trimHeading(trimmed))
				if len(current.Items) == 0 {
					if current.Section == "" {
						current.Section = label
					}
					continue
				}
				out = append(out, current)
				current = IngredientGroup{Section: label, Items: []string{}}
				continue
			}
			current.Items = append(current.Items, trimmed)
		}
		out = append(out, current)
	}
	return out
}

// NormalizeInstructionGroups 清理步驟分組，並以狀態機依內嵌標題拆分
func NormalizeInstructionGroups(groups []InstructionGroup) []InstructionGroup {
	var out []InstructionGroup
	for _, g := range groups {
		section := CleanSectionLabel(g.Section)
		var buffer []string

		flush := func() {
			if len(buffer) > 0 {
				out = append(out, InstructionGroup{Section: section, Steps: buffer})
			}
			buffer = nil
		}

		for _, step := range g.Steps {
			trimmed := strings.TrimSpace(step)
			if trimmed == "" {
				continue
			}
			if isInstructionHeading(trimmed) {
				flush()
				// 編號之類不含字母的標題只切分，不改分組標籤
				if label := trimHeading(trimmed); strings.ContainsFunc(label, unicode.IsLetter) {
					section = CleanSectionLabel(label)
				}
				continue
			}
			buffer = append(buffer, trimmed)
		}
		flush()
	}
	if out == nil {
		out = []InstructionGroup{}
	}
	return out
}

// isSectionEcho 食材行與分組標題相同（重複的標題混入食材列表）
func isSectionEcho(item, rawLabel, cleanLabel string) bool {
	if item == "" {
		return false
	}
	if rawLabel != "" && strings.EqualFold(item, rawLabel) {
		return true
	}
	return cleanLabel != "" && strings.EqualFold(strings.TrimRight(item, ":."), cleanLabel)
}

func trimHeading(line string) string {
	return strings.TrimSpace(strings.TrimRight(line, ".:"))
}

// isInstructionHeading 步驟行是否為內嵌標題：
// 冒號結尾，或去除結尾標點後不超過六個字且全大寫
func isInstructionHeading(line string) bool {
	if strings.HasSuffix(line, ":") {
		return true
	}
	return isShoutedShortLine(trimHeading(line))
}

// isIngredientHeading 食材行是否為內嵌標題
// 只認冒號結尾的行；全大寫短行（如 "TOFU"）仍是食材，含數字或單位詞的行一律視為食材
func isIngredientHeading(line string) bool {
	if !strings.HasSuffix(line, ":") {
		return false
	}
	stripped := trimHeading(line)
	if stripped == "" || strings.ContainsFunc(stripped, unicode.IsDigit) {
		return false
	}
	for _, w := range strings.Fields(strings.ToLower(punctRe.ReplaceAllString(stripped, " "))) {
		if unitWordLookup[w] {
			return false
		}
	}
	return true
}

// isShoutedShortLine 不超過六個字且與大寫形式相同
// 不含字母的行（如編號 "1."）也符合，會被當成標題
func isShoutedShortLine(s string) bool {
	if len(strings.Fields(s)) > maxHeadingWords {
		return false
	}
	return s == strings.ToUpper(s)
}
