package highlight

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	parenRe         = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	gluedQtyRe      = regexp.MustCompile(`(\d)([a-z])`)
	fractionRe      = regexp.MustCompile(`\d+\s+\d+/\d+|\d+/\d+`)
	rangeRe         = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:-|–|to)\s*\d+(?:[.,]\d+)?`)
	leadingQtyRe    = regexp.MustCompile(`^\s*\d+(?:[.,]\d+)?`)
	standaloneNumRe = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`)
	punctRe         = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// FoldFractions 將 Unicode 分數字元（½、¾…）轉成 ASCII "a/b"
func FoldFractions(s string) string {
	if !strings.ContainsFunc(s, isVulgarFraction) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for _, r := range s {
		if !isVulgarFraction(r) {
			sb.WriteRune(r)
			continue
		}
		// NFKC 會把 ½ 展開成 "1⁄2"（U+2044 分數斜線）
		folded := strings.ReplaceAll(norm.NFKC.String(string(r)), "⁄", "/")
		sb.WriteByte(' ')
		sb.WriteString(folded)
		sb.WriteByte(' ')
	}
	return sb.String()
}

func isVulgarFraction(r rune) bool {
	return (r >= '¼' && r <= '¾') || (r >= '⅐' && r <= '⅞') || r == '↉'
}

// CleanIngredientText 清理食材行：去除數量、單位、處理方式、停用詞與標點
// 步驟順序有意義，不可任意調換
func CleanIngredientText(raw string) string {
	s := strings.ToLower(raw)
	s = FoldFractions(s)
	s = parenRe.ReplaceAllString(s, " ")
	s = gluedQtyRe.ReplaceAllString(s, "$1 $2")
	s = fractionRe.ReplaceAllString(s, " ")
	s = rangeRe.ReplaceAllString(s, " ")
	s = leadingQtyRe.ReplaceAllString(s, " ")
	s = standaloneNumRe.ReplaceAllString(s, " ")
	s = unitPattern.ReplaceAllString(s, " ")
	s = prepPattern.ReplaceAllString(s, " ")
	s = stopPattern.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

// NormalizeStepText 步驟文字只轉小寫並去除標點，保留單位與處理方式等細節
func NormalizeStepText(raw string) string {
	s := strings.ToLower(raw)
	s = punctRe.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Tokenize 以空白切詞，丟棄單字元 token，並單數化
func Tokenize(cleaned string) []string {
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 1 {
			continue
		}
		if t := Singularize(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Singularize 以字尾規則單數化
// ies→y、ves→f、es→""（ses 除外）、s→""（ss 除外）
func Singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ves"):
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(word, "es") && !strings.HasSuffix(word, "ses"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}
	return word
}

// HeadNoun 由右往左找第一個非處理詞/停用詞/介系詞的 token
// 全部可忽略時回退為最後一個 token；沒有 token 時返回空字串
func HeadNoun(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if !headIgnoreSet[tokens[i]] {
			return tokens[i]
		}
	}
	return tokens[len(tokens)-1]
}

// BuildPhrases 產生連續的 2-gram 與 3-gram
func BuildPhrases(tokens []string) []string {
	var phrases []string
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			phrases = append(phrases, strings.Join(tokens[i:i+n], " "))
		}
	}
	return phrases
}

// containsWord 檢查 phrase 是否以完整單字形式出現在 text 中
func containsWord(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		if isBoundary(text, start-1, true) && isBoundary(text, end, false) {
			return true
		}
		offset = start + 1
	}
}

func isBoundary(text string, pos int, before bool) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	var r rune
	if before {
		r, _ = utf8.DecodeLastRuneInString(text[:pos+1])
	} else {
		r, _ = utf8.DecodeRuneInString(text[pos:])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
