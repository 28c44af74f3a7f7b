package models

import "time"

// StorageEntry 会话键值存储记录
type StorageEntry struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                                  // 主键
	Key       string     `gorm:"column:storage_key;type:varchar(255);not null;uniqueIndex" json:"key"` // 完整键名（含作用域前缀）
	Value     string     `gorm:"type:text;not null" json:"value"`                                       // 序列化后的值
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`                                     // 过期时间，为空表示不过期
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt time.Time  `gorm:"index" json:"updated_at"`                                               // 更新时间
}

// TableName 指定表名
func (StorageEntry) TableName() string {
	return "storage_entries"
}

// Expired 判断记录是否过期
func (e StorageEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}
