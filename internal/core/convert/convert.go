package convert

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"recipe-highlighter/internal/core/cache"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

// Source 換算結果來源
type Source string

const (
	SourceRule     Source = "rule"
	SourceProvider Source = "provider"
	SourceNone     Source = "none"
)

// maxAnswerLen Provider 回答的長度上限，超過視為無效
const maxAnswerLen = 32

// Result 單行換算結果
type Result struct {
	Line      string `json:"line"`
	Converted string `json:"converted"`
	Metric    string `json:"metric,omitempty"`
	Source    Source `json:"source"`
}

// Provider 低信心行（計數單位或未知單位）的外部換算服務
// 回傳公制數量，例如 "113 g"；無法換算時回傳空字串
type Provider interface {
	Name() string
	Convert(ctx context.Context, line string) (string, error)
}

// Converter 食材行公制換算器
type Converter struct {
	provider Provider
	cache    cache.Cache
}

// NewConverter 創建換算器；provider 與 c 皆可為 nil
func NewConverter(provider Provider, c cache.Cache) *Converter {
	return &Converter{provider: provider, cache: c}
}

// HasProvider 是否啟用外部換算
func (c *Converter) HasProvider() bool {
	return c.provider != nil
}

// Annotate 在食材行尾附加公制換算，例如 "1 cup milk (≈240 ml)"
// 已是公制或已附註的行原樣返回
func (c *Converter) Annotate(ctx context.Context, line string) (Result, error) {
	line = strings.TrimSpace(line)
	res := Result{Line: line, Converted: line, Source: SourceNone}
	if line == "" || strings.Contains(line, "≈") {
		return res, nil
	}

	p, ok := parseLine(line)
	if !ok {
		return res, nil
	}

	switch p.kind {
	case unitRule:
		res.Metric = formatMetric(p.qty, rules[p.unit])
		res.Source = SourceRule
	case unitOther:
		if c.provider == nil {
			return res, nil
		}
		metric, err := c.lookup(ctx, line)
		if err != nil {
			return res, common.ErrConversionFailed.Wrap(err)
		}
		if metric == "" {
			return res, nil
		}
		res.Metric = metric
		res.Source = SourceProvider
	default:
		return res, nil
	}

	res.Converted = annotate(line, res.Metric)
	return res, nil
}

// lookup 先查快取再詢問 Provider；空答案也會快取
func (c *Converter) lookup(ctx context.Context, line string) (string, error) {
	key := cache.Key("convert:"+c.provider.Name(), []byte(strings.ToLower(line)))
	if c.cache != nil {
		data, err := c.cache.Get(ctx, key)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("換算快取讀取失敗", zap.Error(err))
		}
	}

	start := time.Now()
	answer, err := c.provider.Convert(ctx, line)
	common.LogProviderCall(c.provider.Name(), time.Since(start), err)
	if err != nil {
		return "", err
	}

	metric := cleanAnswer(answer)
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, []byte(metric)); err != nil {
			common.LogWarn("換算快取寫入失敗", zap.Error(err))
		}
	}
	return metric, nil
}

// cleanAnswer 只保留第一行並去除引號、括號與約等號
func cleanAnswer(answer string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(answer), "\n")
	s := strings.Trim(strings.TrimSpace(first), "\"'`()[]. ")
	s = strings.TrimSpace(strings.TrimLeft(s, "≈~ "))

	if s == "" || len(s) > maxAnswerLen || !strings.ContainsFunc(s, unicode.IsDigit) {
		return ""
	}
	return s
}
