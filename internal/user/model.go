package user

import (
	"time"

	"gorm.io/gorm"
)

// Voter 定义了选民在数据库中的持久化模型。
// 一条记录只在学籍名册校验通过后创建，ProfileCompleted为真的选民
// 才被允许进入投票入口。
type Voter struct {
	// UUID 是选民的主键，来自客户端Cookie。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// StudentNumber 是选民注册时消耗的学籍名册条目的学号。
	StudentNumber string `gorm:"uniqueIndex;not null"`

	// FirstName / LastName 来自名册条目。
	FirstName string
	LastName  string

	// ProfileCompleted 标记选民资料是否完整。
	// 只有资料完整的选民才有投票资格。
	ProfileCompleted bool

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
