package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 基于go-cache实现的内存缓存
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache 创建一个新的内存缓存
func NewMemoryCache(config Config) (Cache, error) {
	defaultExpiration := config.DefaultTTL
	if defaultExpiration == 0 {
		defaultExpiration = 24 * time.Hour
	}

	cleanupInterval := config.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 10 * time.Minute
	}

	return &MemoryCache{
		cache: gocache.New(defaultExpiration, cleanupInterval),
	}, nil
}

// Get 获取缓存内容，返回副本
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found := m.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Set 设置缓存内容，ttl为0时使用默认过期时间
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	m.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete 删除缓存项
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Clear 清空所有缓存
func (m *MemoryCache) Clear(ctx context.Context) error {
	m.cache.Flush()
	return nil
}

func init() {
	RegisterCache("memory", NewMemoryCache)
}
