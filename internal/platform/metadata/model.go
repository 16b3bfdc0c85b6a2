package metadata

import "gorm.io/gorm"

// Metadata 定义了存储系统元数据的键值对表结构
type Metadata struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// Key 是元数据的唯一键名
	Key string `gorm:"uniqueIndex;not null"`

	// Value 是以字符串形式存储的元数据值
	Value string
}
