package recipe

import (
	"context"
	"errors"

	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/infrastructure/metrics"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// rawPreviewLimit 日誌中原始回應的最大長度
const rawPreviewLimit = 500

// UpstreamClient 上游生成客戶端
type UpstreamClient interface {
	Complete(ctx context.Context, system, user string) (*aiservice.Completion, error)
	Remember(ctx context.Context, key, text string)
}

// Outcome 一次生成的結果
type Outcome struct {
	Collection *RecipeCollection
	Source     Source
	Reason     string
}

// attempt 上游路徑的結果，collection 與 failure 只會有一個
type attempt struct {
	collection *RecipeCollection
	failure    *GenerationError
}

func succeeded(c *RecipeCollection) attempt      { return attempt{collection: c} }
func needsFallback(err *GenerationError) attempt { return attempt{failure: err} }

// Service 食譜生成服務
type Service struct {
	client          UpstreamClient
	fallback        *FallbackGenerator
	fallbackEnabled bool
}

// NewService 創建食譜生成服務，client 可為 nil
func NewService(client UpstreamClient, fallback *FallbackGenerator, fallbackEnabled bool) *Service {
	if fallback == nil {
		fallback = NewFallbackGenerator(nil)
	}
	return &Service{
		client:          client,
		fallback:        fallback,
		fallbackEnabled: fallbackEnabled,
	}
}

// FallbackEnabled 是否啟用降級生成
func (s *Service) FallbackEnabled() bool {
	return s.fallbackEnabled
}

// Generate 上游生成、正規化、結構驗證，任一失敗即改用降級生成
func (s *Service) Generate(ctx context.Context, req *GenerationRequest) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		metrics.IncInvalidRequest()
		return nil, err
	}

	result := s.tryUpstream(ctx, req)
	if result.collection != nil {
		metrics.IncGeneration(metrics.SourceUpstream)
		return &Outcome{Collection: result.collection, Source: SourceUpstream}, nil
	}

	failure := result.failure
	reason := failure.Reason()
	fields := []zap.Field{
		zap.String("stage", string(failure.Stage)),
		zap.String("reason", reason),
		zap.Error(failure.Err),
	}
	if failure.Raw != "" {
		fields = append(fields,
			zap.Int("raw_length", len(failure.Raw)),
			zap.String("raw_preview", common.Preview(failure.Raw, rawPreviewLimit)),
		)
	}

	if !s.fallbackEnabled {
		metrics.IncGeneration(metrics.SourceError)
		metrics.IncError("recipe", reason)
		common.LogError("Recipe generation failed", fields...)
		return nil, failure
	}

	metrics.IncFallback(reason)
	metrics.IncGeneration(metrics.SourceFallback)
	if reason == ReasonNotConfigured {
		common.LogDebug("Upstream not configured, using fallback recipes", fields...)
	} else {
		common.LogWarn("Upstream generation failed, using fallback recipes", fields...)
	}

	return &Outcome{
		Collection: s.fallback.Generate(req),
		Source:     SourceFallback,
		Reason:     reason,
	}, nil
}

// tryUpstream 依序執行 generate → normalize → validate
func (s *Service) tryUpstream(ctx context.Context, req *GenerationRequest) attempt {
	if s.client == nil {
		return needsFallback(upstreamFailure(aiservice.ErrNotConfigured))
	}

	prompt := BuildPrompt(req)
	completion, err := s.complete(ctx, prompt)
	if err != nil {
		return needsFallback(upstreamFailure(err))
	}

	parsed, err := Normalize(completion.Text)
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			return needsFallback(genErr)
		}
		return needsFallback(malformedResponse(err, completion.Text))
	}

	collection, err := ValidateSchema(parsed)
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			genErr.Raw = completion.Text
			return needsFallback(genErr)
		}
		return needsFallback(schemaViolation(err, completion.Text))
	}

	if !completion.Cached {
		s.client.Remember(ctx, completion.CacheKey, completion.Text)
	}
	return succeeded(collection)
}

// complete 呼叫上游，攔截 panic 轉為錯誤
func (s *Service) complete(ctx context.Context, prompt Prompt) (completion *aiservice.Completion, err error) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Upstream client panicked", zap.Any("panic", r))
			completion = nil
			err = errors.New("upstream client panicked")
		}
	}()

	completion, err = s.client.Complete(ctx, prompt.System, prompt.User)
	if err == nil && completion == nil {
		err = errors.New("upstream returned no completion")
	}
	return completion, err
}
