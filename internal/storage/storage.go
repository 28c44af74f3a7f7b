// Package storage 提供会话级键值存储端口及其内存、Redis、数据库实现。
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyKey 键名为空
var ErrEmptyKey = errors.New("storage: empty key")

// Entry 一条待写入的键值
type Entry struct {
	Key   string
	Value []byte
}

// Store 键值存储端口
//
// Set 必须原子地写入全部条目，Remove 必须一并删除全部键，
// 保证成对的键不会出现一个存在而另一个缺失的状态。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, entries ...Entry) error
	Remove(ctx context.Context, keys ...string) error
}

func validateKeys(keys []string) error {
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			return ErrEmptyKey
		}
	}
	return nil
}

func entryKeys(entries []Entry) []string {
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
	}
	return keys
}
