package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client Gemini 客戶端
type Client struct {
	client      *genai.Client
	modelName   string
	temperature float32
	topP        float32
	maxTokens   int32
	timeout     time.Duration
}

// NewClient 創建新的 Gemini 客戶端
func NewClient(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Credential()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{
		client:      client,
		modelName:   cfg.ModelName(),
		temperature: float32(cfg.Temperature),
		topP:        float32(cfg.TopP),
		maxTokens:   int32(cfg.MaxTokens),
		timeout:     cfg.Timeout,
	}, nil
}

// Generate 生成內容，system 訊息轉為 SystemInstruction
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetTopP(c.topP)
	model.SetMaxOutputTokens(c.maxTokens)
	model.ResponseMIMEType = "application/json"

	system, parts := splitMessages(req.Messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		common.LogError("Failed to generate content from Gemini",
			zap.String("model", c.modelName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	content := extractText(resp)
	if strings.TrimSpace(content) == "" {
		return nil, provider.ErrEmptyResponse
	}

	out := &provider.Response{Content: content}
	if resp.UsageMetadata != nil {
		out.Usage = provider.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// splitMessages 拆出 system 指令與使用者內容
func splitMessages(messages []provider.Message) (string, []genai.Part) {
	var system []string
	var parts []genai.Part
	for _, msg := range messages {
		if msg.Role == provider.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	return strings.Join(system, "\n\n"), parts
}

// extractText 串接第一個候選的所有文字片段
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.modelName
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	return c.client.Close()
}
