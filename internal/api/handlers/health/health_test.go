package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/queue"
	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(values map[string]any) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		for k, v := range values {
			c.Set(k, v)
		}
		c.Next()
	})
	r.GET("/health", HealthCheck)
	r.GET("/ready", ReadinessCheck)
	r.GET("/live", LivenessCheck)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheckReportsUpstreamAndCache(t *testing.T) {
	cfg := &config.Config{
		App:        config.AppConfig{Version: "1.2.3"},
		LLM:        config.LLMConfig{Provider: config.ProviderOpenAI},
		Generation: config.GenerationConfig{FallbackEnabled: true},
	}
	mem := cache.NewManager(config.CacheConfig{MaxSize: 5, TTL: time.Minute})
	svc := aiservice.NewService(nil, mem, queue.NewManager(2), time.Second)
	t.Cleanup(func() { _ = svc.Close() })

	w := get(newRouter(map[string]any{ContextKeyConfig: cfg, ContextKeyAIService: svc}), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.False(t, resp.Upstream.Configured)
	assert.True(t, resp.Upstream.FallbackEnabled)
	assert.Equal(t, config.ProviderOpenAI, resp.Upstream.Provider)
	require.NotNil(t, resp.Cache)
	assert.Equal(t, 5, resp.Cache.MaxSize)
	require.NotNil(t, resp.Queue)
	assert.Equal(t, 2, resp.Queue.MaxConcurrent)
}

func TestHealthCheckWithoutConfig(t *testing.T) {
	w := get(newRouter(nil), "/health")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReadinessCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	w := get(newRouter(map[string]any{ContextKeyProbes: map[string]Probe{"cache": ok}}), "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"cache":"ok"}}`, w.Body.String())

	w = get(newRouter(map[string]any{ContextKeyProbes: map[string]Probe{"cache": ok, "mongo": down}}), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"not_ready","checks":{"cache":"ok","mongo":"connection refused"}}`, w.Body.String())
}

func TestReadinessWithoutProbes(t *testing.T) {
	w := get(newRouter(nil), "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{}}`, w.Body.String())
}

func TestLivenessCheck(t *testing.T) {
	w := get(newRouter(nil), "/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
