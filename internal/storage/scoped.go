package storage

import (
	"context"
	"strings"
)

// Scoped 为底层存储的所有键加上作用域前缀，例如 cart:{session}
type Scoped struct {
	inner  Store
	prefix string
}

// NewScoped 创建带作用域的存储视图
func NewScoped(inner Store, parts ...string) *Scoped {
	return &Scoped{inner: inner, prefix: strings.Join(parts, ":")}
}

// Get 读取作用域内键值
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.key(key))
}

// Set 写入作用域内多个键值
func (s *Scoped) Set(ctx context.Context, entries ...Entry) error {
	scoped := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		scoped = append(scoped, Entry{Key: s.key(entry.Key), Value: entry.Value})
	}
	return s.inner.Set(ctx, scoped...)
}

// Remove 删除作用域内多个键
func (s *Scoped) Remove(ctx context.Context, keys ...string) error {
	scoped := make([]string, 0, len(keys))
	for _, key := range keys {
		scoped = append(scoped, s.key(key))
	}
	return s.inner.Remove(ctx, scoped...)
}

func (s *Scoped) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
