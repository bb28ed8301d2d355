package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/queue"
	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 由路由中間件注入的上下文鍵
const (
	ContextKeyConfig    = "config"
	ContextKeyAIService = "ai_service"
	ContextKeyProbes    = "readiness_probes"
)

// probeTimeout 單一就緒檢查的時限
const probeTimeout = 2 * time.Second

// Probe 就緒檢查項目
type Probe func(ctx context.Context) error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Upstream  UpstreamStatus         `json:"upstream"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// UpstreamStatus 上游生成設定狀態
type UpstreamStatus struct {
	Configured      bool   `json:"configured"`
	Provider        string `json:"provider"`
	Model           string `json:"model,omitempty"`
	FallbackEnabled bool   `json:"fallback_enabled"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	value, exists := c.Get(ContextKeyConfig)
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}
	cfg, ok := value.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid configuration type",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Upstream: UpstreamStatus{
			Provider:        cfg.LLM.Provider,
			FallbackEnabled: cfg.Generation.FallbackEnabled,
		},
	}

	if svc, ok := c.Value(ContextKeyAIService).(*aiservice.Service); ok && svc != nil {
		response.Upstream.Configured = svc.Configured()
		response.Upstream.Model = svc.Model()
		response.Cache = svc.CacheStats()
		response.Queue = svc.GateStatus()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，任一依賴失敗回傳 503
func ReadinessCheck(c *gin.Context) {
	probes, _ := c.Value(ContextKeyProbes).(map[string]Probe)

	status := http.StatusOK
	checks := make(map[string]string, len(probes))
	for name, probe := range probes {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		err := probe(ctx)
		cancel()

		if err != nil {
			common.LogWarn("Readiness probe failed", zap.String("probe", name), zap.Error(err))
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
