package cache

import "context"

// Cache 上游回應快取，只存放通過結構驗證的原始文字
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
	Close() error
}
