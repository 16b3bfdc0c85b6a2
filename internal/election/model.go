package election

import (
	"time"

	"gorm.io/gorm"
)

// Status 定义了选举生命周期状态的枚举类型
type Status string

const (
	// StatusCreated 表示选举已创建但尚未开放投票
	StatusCreated Status = "Created"
	// StatusStarted 表示选举正在接受选票
	StatusStarted Status = "Started"
	// StatusPaused 表示选举暂停接受选票。实践中它同时充当"已结束"状态，
	// 管理员可以把Paused的选举重新置回Started。
	StatusPaused Status = "Paused"
)

// Election 定义了数据库中选举的数据结构
type Election struct {
	gorm.Model

	// Name 是选举的展示名称，例如 "USG General Election 2026"
	Name string `json:"name"`

	// Status 是当前生命周期状态
	Status Status `gorm:"index" json:"status"`

	// StartTime 是可选的计划开始时间，仅作展示用途
	StartTime *time.Time `json:"start_time"`

	// EndTime 是可选的截止时间。设置后，到点的选举不再接受选票。
	EndTime *time.Time `json:"end_time"`
}

// IsOpen 判断选举此刻是否接受选票：
// 状态必须是Started，且设置了截止时间的话当前时间必须早于截止时间。
func (e *Election) IsOpen(now time.Time) bool {
	if e.Status != StatusStarted {
		return false
	}
	if e.EndTime != nil && !now.Before(*e.EndTime) {
		return false
	}
	return true
}
