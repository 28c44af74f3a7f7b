package storage

import (
	"context"
	"time"

	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/repository"
)

// GormStore 基于数据库表的存储
type GormStore struct {
	repo repository.StorageEntryRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewGormStore 创建数据库存储，ttl 为 0 表示不过期
func NewGormStore(repo repository.StorageEntryRepository, ttl time.Duration) *GormStore {
	return &GormStore{repo: repo, ttl: ttl, now: time.Now}
}

// Get 读取未过期的键值
func (s *GormStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, err := s.repo.GetByKey(key, s.now())
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return nil, false, nil
	}
	return []byte(entry.Value), true, nil
}

// Set 在同一事务内写入全部条目
func (s *GormStore) Set(_ context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := validateKeys(entryKeys(entries)); err != nil {
		return err
	}
	now := s.now()
	var expiresAt *time.Time
	if s.ttl > 0 {
		at := now.Add(s.ttl)
		expiresAt = &at
	}
	rows := make([]models.StorageEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, models.StorageEntry{
			Key:       entry.Key,
			Value:     string(entry.Value),
			ExpiresAt: expiresAt,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return s.repo.Transaction(func(repo repository.StorageEntryRepository) error {
		return repo.UpsertMany(rows)
	})
}

// Remove 删除全部键
func (s *GormStore) Remove(_ context.Context, keys ...string) error {
	return s.repo.DeleteByKeys(keys)
}

// PurgeExpired 清理过期记录
func (s *GormStore) PurgeExpired(_ context.Context) (int64, error) {
	return s.repo.DeleteExpired(s.now())
}
