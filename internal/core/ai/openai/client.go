package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// chatRequest chat completions 請求
type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	Temperature float64            `json:"temperature"`
	TopP        float64            `json:"top_p,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

// chatResponse chat completions 響應
type chatResponse struct {
	ID      string         `json:"id"`
	Choices []choice       `json:"choices"`
	Usage   provider.Usage `json:"usage"`
}

type choice struct {
	Message provider.Message `json:"message"`
}

// apiError 上游錯誤格式
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// StatusError 上游回傳非 2xx 狀態
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("openai error (status %d): %s", e.StatusCode, e.Message)
}

// Client OpenAI 相容 API 客戶端
type Client struct {
	client      *resty.Client
	model       string
	temperature float64
	topP        float64
	maxTokens   int
	timeout     time.Duration
}

// NewClient 創建新的 OpenAI 客戶端
func NewClient(cfg config.LLMConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Credential())).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
}

// Generate 發送一次 chat completion，不重試
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}
	if req.TopP > 0 {
		body.TopP = req.TopP
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}

	var result chatResponse
	var errBody apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&errBody).
		Post("/chat/completions")
	if err != nil {
		common.LogError("Failed to send request to OpenAI",
			zap.String("model", c.model),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("OpenAI returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.model),
			zap.String("response", common.Preview(resp.String(), 300)),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode(), Message: errBody.Error.Message}
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response: %w", provider.ErrEmptyResponse)
	}
	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, provider.ErrEmptyResponse
	}

	common.LogDebug("OpenAI response received",
		zap.String("model", c.model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return &provider.Response{Content: content, Usage: result.Usage}, nil
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
