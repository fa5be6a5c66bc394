package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"recipe-highlighter/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

const systemPrompt = "You convert one recipe ingredient line to a metric amount. " +
	"Answer with only the amount and unit, for example \"113 g\" or \"400 ml\". " +
	"Answer \"none\" when the line has no sensible metric equivalent."

// chatMessage 對話消息
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest 發送到 OpenRouter 的請求
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

// chatResponse OpenRouter 回應中用到的欄位
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenRouterProvider 以 OpenRouter chat completion 換算單位
type OpenRouterProvider struct {
	cfg    config.OpenRouterConfig
	client *resty.Client
}

// NewOpenRouterProvider 創建 OpenRouter 換算服務
func NewOpenRouterProvider(cfg config.OpenRouterConfig) *OpenRouterProvider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("X-Title", "Recipe Highlighter")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &OpenRouterProvider{
		cfg:    cfg,
		client: client,
	}
}

// Name 服務名稱
func (p *OpenRouterProvider) Name() string { return "openrouter" }

// Convert 詢問模型單行的公制數量
func (p *OpenRouterProvider) Convert(ctx context.Context, line string) (string, error) {
	req := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: line},
		},
		MaxTokens: p.cfg.MaxTokens,
	}

	// 發送請求
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), resp.String())
	}

	// 解析回應
	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	// "none" 之類不含數字的回答由 cleanAnswer 過濾
	return result.Choices[0].Message.Content, nil
}
