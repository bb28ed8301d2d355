package cache

import (
	"context"
	"errors"
	"fmt"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KeyPrefix redis 快取鍵前綴
const KeyPrefix = "recipes:upstream:"

// RedisCache redis 快取服務
type RedisCache struct {
	client *redis.Client
	cfg    config.CacheConfig
}

// NewRedisCache 創建 redis 快取服務並確認連線
func NewRedisCache(ctx context.Context, cfg config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", config.CacheBackendRedis),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("存活時間", cfg.TTL),
	)

	return &RedisCache{client: client, cfg: cfg}, nil
}

// Get 獲取緩存，連線錯誤視為未命中
func (s *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := s.client.Get(ctx, KeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			common.LogWarn("Redis cache lookup failed", zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, KeyPrefix+key, value, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Ping 確認 redis 連線
func (s *RedisCache) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉 redis 連線
func (s *RedisCache) Close() error {
	return s.client.Close()
}
