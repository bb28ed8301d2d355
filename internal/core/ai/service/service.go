package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/core/ai/queue"
	"recipe-suggester/internal/infrastructure/metrics"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNotConfigured 未設定上游憑證
var ErrNotConfigured = errors.New("upstream generation client is not configured")

// Completion 上游回應文字
type Completion struct {
	Text     string
	CacheKey string
	Cached   bool
	Usage    provider.Usage
}

// Service 上游生成服務
type Service struct {
	provider provider.Provider
	cache    cache.Cache
	gate     *queue.Manager
	timeout  time.Duration
}

// NewService 創建生成服務，provider 為 nil 代表未設定憑證
func NewService(p provider.Provider, c cache.Cache, gate *queue.Manager, timeout time.Duration) *Service {
	if p != nil && timeout <= 0 {
		timeout = p.GetTimeout()
	}
	return &Service{
		provider: p,
		cache:    c,
		gate:     gate,
		timeout:  timeout,
	}
}

// Configured 是否具備上游客戶端
func (s *Service) Configured() bool {
	return s.provider != nil
}

// Model 上游模型名稱
func (s *Service) Model() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetModel()
}

// Complete 以 system/user 訊息呼叫上游一次，不重試
func (s *Service) Complete(ctx context.Context, system, user string) (*Completion, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}

	model := s.provider.GetModel()
	key := common.HashStrings(model, system, user)

	if s.cache != nil {
		if text, ok := s.cache.Get(ctx, key); ok {
			metrics.IncCacheLookup(true)
			common.LogCacheHit("upstream")
			return &Completion{Text: text, CacheKey: key, Cached: true}, nil
		}
		metrics.IncCacheLookup(false)
		common.LogCacheMiss("upstream")
	}

	if s.gate != nil {
		if !s.gate.TryAcquire() {
			return nil, common.ErrQueueFull
		}
		defer s.gate.Release()
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	metrics.IncLLMRequest(model)
	start := time.Now()
	resp, err := s.provider.Generate(callCtx, &provider.Request{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: system},
			{Role: provider.RoleUser, Content: user},
		},
	})
	duration := time.Since(start)
	metrics.ObserveUpstreamDuration(duration)
	common.LogUpstreamCall(model, duration, err)

	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("upstream timed out after %s: %w", s.timeout, err)
		}
		return nil, err
	}
	if resp == nil {
		return nil, provider.ErrEmptyResponse
	}

	return &Completion{Text: resp.Content, CacheKey: key, Usage: resp.Usage}, nil
}

// Remember 快取已通過驗證的上游文字
func (s *Service) Remember(ctx context.Context, key, text string) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, text); err != nil {
		common.LogWarn("Failed to cache upstream response", zap.Error(err))
	}
}

// GateStatus 上游併發狀態
func (s *Service) GateStatus() *queue.Status {
	if s.gate == nil {
		return nil
	}
	status := s.gate.Status()
	return &status
}

// CacheStats 記憶體快取統計，其它後端回傳 nil
func (s *Service) CacheStats() *cache.Stats {
	m, ok := s.cache.(*cache.Manager)
	if !ok {
		return nil
	}
	stats := m.GetStats()
	return &stats
}

// Ping 檢查快取後端連線，記憶體快取永遠成功
func (s *Service) Ping(ctx context.Context) error {
	p, ok := s.cache.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}

// Close 關閉上游客戶端與快取
func (s *Service) Close() error {
	var errs []error
	if s.provider != nil {
		errs = append(errs, s.provider.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}
