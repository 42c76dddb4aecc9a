package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache 本地 LRU 缓存，条目带 TTL
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
	ttl      time.Duration
	now      func() time.Time
}

// NewCache 创建容量为 size、默认有效期为 ttl 的缓存
func NewCache(size int, ttl time.Duration) (*Cache, error) {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lruCache: l, ttl: ttl, now: time.Now}, nil
}

// Set 使用默认 TTL 设置缓存
func (c *Cache) Set(key string, data interface{}) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 nil
func (c *Cache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// Delete 删除指定缓存
func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}

// Purge drops every entry; called after writes.
func (c *Cache) Purge() {
	c.lruCache.Purge()
}

// Len 当前条目数（含未清理的过期条目）
func (c *Cache) Len() int {
	return c.lruCache.Len()
}
