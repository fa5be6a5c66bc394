package highlight

import (
	"strings"
	"unicode/utf8"
)

const (
	fuzzyMaxLengthGap   = 2
	fuzzyContainsMinLen = 5
	// StrictFuzzyMinLen 啟用 StrictFuzzy 時，編輯距離比對要求兩邊 token 的最小長度
	StrictFuzzyMinLen = 4
)

// fuzzyCache 單次比對內的模糊比對結果快取
// 同一組 token 會在每個步驟重複出現，不跨呼叫共用
type fuzzyCache struct {
	editMinLen int
	memo       map[[2]string]bool
}

func newFuzzyCache(strict bool) *fuzzyCache {
	c := &fuzzyCache{memo: make(map[[2]string]bool)}
	if strict {
		c.editMinLen = StrictFuzzyMinLen
	}
	return c
}

func (c *fuzzyCache) match(a, b string) bool {
	key := [2]string{a, b}
	if v, ok := c.memo[key]; ok {
		return v
	}
	v := fuzzyMatch(a, b, c.editMinLen)
	c.memo[key] = v
	return v
}

// fuzzyMatch 有界模糊比對
// 長度差超過 2 直接排除；較長者至少 5 個字元時允許包含關係；否則要求編輯距離不超過 1
// 較短 token 少於 editMinLen 個字元時不做編輯距離比對
func fuzzyMatch(a, b string, editMinLen int) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if absInt(la-lb) > fuzzyMaxLengthGap {
		return false
	}
	longer, shorter := a, b
	if lb > la {
		longer, shorter = b, a
		la, lb = lb, la
	}
	if la >= fuzzyContainsMinLen && strings.Contains(longer, shorter) {
		return true
	}
	if lb < editMinLen {
		return false
	}
	return withinOneEdit(longer, shorter)
}

// withinOneEdit 判斷編輯距離是否不超過 1（longer 長度需 >= shorter）
func withinOneEdit(longer, shorter string) bool {
	l, s := []rune(longer), []rune(shorter)
	if len(l)-len(s) > 1 {
		return false
	}
	i, j, edits := 0, 0, 0
	for i < len(l) && j < len(s) {
		if l[i] == s[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(l) == len(s) {
			j++ // 替換
		}
		i++
	}
	return edits+(len(l)-i) <= 1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
