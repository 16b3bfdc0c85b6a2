package roster

import "gorm.io/gorm"

// Entry 定义了预先导入的学籍名册条目。
// 名册由管理端的批量导入协作方维护；本模块只负责校验与消耗。
type Entry struct {
	gorm.Model

	// StudentNumber 是学号，名册内唯一
	StudentNumber string `gorm:"uniqueIndex;not null"`

	// FirstName / LastName 用于与注册申请中的姓名比对
	FirstName string
	LastName  string

	// Consumed 标记该条目是否已被一次成功注册消耗。
	// 一个名册条目只能注册一个选民账号。
	Consumed bool `gorm:"index"`
}
