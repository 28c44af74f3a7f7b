package repository

import (
	"errors"
	"time"

	"github.com/licence-store/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageEntryRepository 会话键值存储数据访问接口
type StorageEntryRepository interface {
	GetByKey(key string, now time.Time) (*models.StorageEntry, error)
	UpsertMany(entries []models.StorageEntry) error
	DeleteByKeys(keys []string) error
	DeleteExpired(now time.Time) (int64, error)
	Transaction(fn func(repo StorageEntryRepository) error) error
}

// GormStorageEntryRepository GORM 实现
type GormStorageEntryRepository struct {
	db *gorm.DB
}

// NewStorageEntryRepository 创建会话存储仓库
func NewStorageEntryRepository(db *gorm.DB) *GormStorageEntryRepository {
	return &GormStorageEntryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStorageEntryRepository) WithTx(tx *gorm.DB) *GormStorageEntryRepository {
	if tx == nil {
		return r
	}
	return &GormStorageEntryRepository{db: tx}
}

// Transaction 在同一事务内执行多次写入
func (r *GormStorageEntryRepository) Transaction(fn func(repo StorageEntryRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// GetByKey 按键读取未过期记录，不存在时返回 nil
func (r *GormStorageEntryRepository) GetByKey(key string, now time.Time) (*models.StorageEntry, error) {
	var entry models.StorageEntry
	err := r.db.Where("storage_key = ?", key).
		Where("expires_at IS NULL OR expires_at > ?", now).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertMany 按键写入或覆盖多条记录
func (r *GormStorageEntryRepository) UpsertMany(entries []models.StorageEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entries).Error
}

// DeleteByKeys 删除指定键
func (r *GormStorageEntryRepository) DeleteByKeys(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.Where("storage_key IN ?", keys).Delete(&models.StorageEntry{}).Error
}

// DeleteExpired 清理过期记录
func (r *GormStorageEntryRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at IS NOT NULL AND expires_at <= ?", now).Delete(&models.StorageEntry{})
	return result.RowsAffected, result.Error
}
