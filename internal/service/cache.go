package service

import (
	"context"
	"time"

	"ats-go/internal/storage"
)

// Cache AI 结果缓存，*storage.Redis 实现了该接口
type Cache interface {
	FormatKey(keyConstant string, parts ...interface{}) string
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

var _ Cache = (*storage.Redis)(nil)

// CacheFrom 把可能为 nil 的 Redis 适配器转为 Cache，避免 nil 指针被包装成非 nil 接口
func CacheFrom(r *storage.Redis) Cache {
	if r == nil {
		return nil
	}
	return r
}
