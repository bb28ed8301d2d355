package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-suggester/internal/api/handlers/health"
	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/queue"
	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:        config.AppConfig{Version: "test", Debug: true},
		Server:     config.ServerConfig{MaxBodyBytes: 1 << 20, RequestTimeout: 5 * time.Second},
		LLM:        config.LLMConfig{Provider: config.ProviderOpenAI},
		Generation: config.GenerationConfig{FallbackEnabled: true, MaxConcurrent: 2},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func testDeps(t *testing.T) Dependencies {
	t.Helper()
	ai := aiservice.NewService(nil, cache.NewManager(config.CacheConfig{MaxSize: 10, TTL: time.Minute}), queue.NewManager(2), time.Second)
	t.Cleanup(func() { _ = ai.Close() })
	return Dependencies{
		AIService:     ai,
		RecipeService: recipe.NewService(ai, nil, true),
		Probes: map[string]health.Probe{
			"cache": ai.Ping,
		},
	}
}

func request(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouterRequiresRecipeService(t *testing.T) {
	_, err := SetupRouter(testConfig(), Dependencies{})
	assert.Error(t, err)
}

func TestGenerateRoutesFallBackWithoutCredentials(t *testing.T) {
	r, err := SetupRouter(testConfig(), testDeps(t))
	require.NoError(t, err)

	for i, path := range []string{"/generate-recipes", "/api/generate-recipes", "/api/v1/generate-recipes"} {
		// 每條路由使用不同內容，避免觸發去重
		body := `{"ingredients":["chicken","rice"],"cuisine":"Italian","targetTime":30,"variations":` +
			[]string{"1", "2", "3"}[i] + `}`

		w := request(r, http.MethodPost, path, body)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "fallback", w.Header().Get(recipe.SourceHeader), path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)

		var got recipe.RecipeCollection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.Recipes, i+1, path)
	}
}

func TestDuplicateGenerateRequestRejected(t *testing.T) {
	cfg := testConfig()
	cfg.DedupWindow = time.Minute
	r, err := SetupRouter(cfg, testDeps(t))
	require.NoError(t, err)

	body := `{"ingredients":["egg"],"cuisine":"French","targetTime":10,"variations":1}`
	require.Equal(t, http.StatusOK, request(r, http.MethodPost, "/generate-recipes", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, request(r, http.MethodPost, "/generate-recipes", body).Code)
}

func TestInvalidGenerateRequest(t *testing.T) {
	r, err := SetupRouter(testConfig(), testDeps(t))
	require.NoError(t, err)

	w := request(r, http.MethodPost, "/api/generate-recipes", `{"ingredients":["egg"],"cuisine":"French","targetTime":3,"variations":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Target time must be between 5 and 120 minutes"}`, w.Body.String())
}

func TestOperationalRoutes(t *testing.T) {
	r, err := SetupRouter(testConfig(), testDeps(t))
	require.NoError(t, err)

	w := request(r, http.MethodGet, "/api/hello", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Server running"}`, w.Body.String())

	w = request(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp health.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp.Version)
	assert.False(t, resp.Upstream.Configured)
	assert.NotNil(t, resp.Cache)

	w = request(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"cache":"ok"}}`, w.Body.String())

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/live", "").Code)

	request(r, http.MethodPost, "/generate-recipes", `{"ingredients":["kale"],"cuisine":"Greek","targetTime":15,"variations":1}`)
	w = request(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipes_generation_requests_total")
	assert.Contains(t, w.Body.String(), "recipes_fallback_total")
}

func TestReadinessReportsFailingProbe(t *testing.T) {
	deps := testDeps(t)
	deps.Probes["bookmarks"] = func(context.Context) error { return errors.New("no reachable servers") }
	r, err := SetupRouter(testConfig(), deps)
	require.NoError(t, err)

	w := request(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBookmarkRoutesDisabled(t *testing.T) {
	r, err := SetupRouter(testConfig(), testDeps(t))
	require.NoError(t, err)

	w := request(r, http.MethodGet, "/api/v1/users/u1/bookmarks", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Bookmarks are not configured"}`, w.Body.String())
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	r, err := SetupRouter(cfg, testDeps(t))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, request(r, http.MethodGet, "/metrics", "").Code)
}
