package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/core/ai/queue"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	content  string
	err      error
	delay    time.Duration
	calls    int
	requests []*provider.Request
	block    chan struct{}
}

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content}, nil
}

func (f *fakeProvider) GetModel() string          { return "fake-model" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Close() error              { return nil }

func newMemoryCache(t *testing.T) *cache.Manager {
	t.Helper()
	m := cache.NewManager(config.CacheConfig{MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestCompleteWithoutProvider(t *testing.T) {
	s := NewService(nil, nil, nil, time.Second)

	_, err := s.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, s.Configured())
	assert.Equal(t, "", s.Model())
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	p := &fakeProvider{content: `{"recipes":[]}`}
	s := NewService(p, nil, queue.NewManager(1), time.Second)

	got, err := s.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)

	assert.Equal(t, `{"recipes":[]}`, got.Text)
	assert.False(t, got.Cached)
	assert.Equal(t, common.HashStrings("fake-model", "sys", "user"), got.CacheKey)
	require.Len(t, p.requests, 1)
	assert.Equal(t, []provider.Message{
		{Role: provider.RoleSystem, Content: "sys"},
		{Role: provider.RoleUser, Content: "user"},
	}, p.requests[0].Messages)
	assert.Equal(t, 0, s.GateStatus().InFlight)
}

func TestCompleteUsesCacheOnlyAfterRemember(t *testing.T) {
	p := &fakeProvider{content: "text"}
	s := NewService(p, newMemoryCache(t), nil, time.Second)
	ctx := context.Background()

	first, err := s.Complete(ctx, "sys", "user")
	require.NoError(t, err)
	_, err = s.Complete(ctx, "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)

	s.Remember(ctx, first.CacheKey, first.Text)

	cached, err := s.Complete(ctx, "sys", "user")
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, "text", cached.Text)
	assert.Equal(t, 2, p.calls)
	require.NotNil(t, s.CacheStats())
	assert.Equal(t, int64(1), s.CacheStats().Hits)
}

func TestCompleteReturnsProviderError(t *testing.T) {
	boom := errors.New("boom")
	s := NewService(&fakeProvider{err: boom}, nil, nil, time.Second)

	_, err := s.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, boom)
}

func TestCompleteAppliesTimeout(t *testing.T) {
	s := NewService(&fakeProvider{delay: time.Second}, nil, nil, 20*time.Millisecond)

	_, err := s.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

func TestCompleteRejectsWhenGateFull(t *testing.T) {
	p := &fakeProvider{content: "text", block: make(chan struct{})}
	s := NewService(p, nil, queue.NewManager(1), time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Complete(context.Background(), "sys", "first")
	}()

	require.Eventually(t, func() bool {
		return s.GateStatus().InFlight == 1
	}, time.Second, 5*time.Millisecond)

	_, err := s.Complete(context.Background(), "sys", "second")
	assert.ErrorIs(t, err, common.ErrQueueFull)

	close(p.block)
	<-done
}

func TestCacheStatsNilForNonMemoryCache(t *testing.T) {
	s := NewService(&fakeProvider{}, nil, nil, time.Second)
	assert.Nil(t, s.CacheStats())
	assert.Nil(t, s.GateStatus())
	assert.NoError(t, s.Close())
}

func TestPingChecksRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), config.CacheConfig{RedisAddr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)

	s := NewService(&fakeProvider{}, rc, nil, time.Second)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))

	assert.NoError(t, NewService(nil, newMemoryCache(t), nil, 0).Ping(context.Background()))
}
