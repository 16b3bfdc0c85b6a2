package candidate

import "gorm.io/gorm"

// Candidate 定义了数据库中候选人的数据结构。
// 注意：这里没有可变的votes计数列，任何票数都从选票账本推导，
// 避免计数与账本漂移。
type Candidate struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// CandidateID 是候选人的业务主键，例如 "C-2024-013"
	CandidateID string `gorm:"uniqueIndex;not null" json:"id"`

	// Name 是候选人的展示姓名
	Name string `json:"name"`

	// Party 是候选人所属的党团/竞选团队，可为空
	Party string `json:"party"`

	// Photo 是候选人照片的相对路径，由外部的文件存储协作方管理
	Photo string `json:"photo"`

	// Position 是候选人参选的职位标识（封闭集合，见position包）
	Position string `gorm:"index" json:"position"`

	// ElectionID 标记候选人归属的选举
	ElectionID uint `gorm:"index" json:"election_id"`
}
