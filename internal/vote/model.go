package vote

import (
	"gorm.io/gorm"
)

// Submission 是一次选票提交事件。
// (voter_id, election_id) 上的联合唯一索引让数据库成为一人一票竞争的
// 最终仲裁者：两个并发提交最多只有一个能写入这一行，另一个会以
// 唯一约束冲突失败，不存在先查后写的竞态窗口。
type Submission struct {
	gorm.Model

	// VoterID 是提交选票的选民UUID（来自已认证会话，不是请求体）
	VoterID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_submissions_voter_election"`

	// ElectionID 标记这次提交属于哪一场选举
	ElectionID uint `gorm:"not null;uniqueIndex:idx_submissions_voter_election"`
}

// VoteRecord 是账本中一条不可变的选票记录：
// 选民在某个职位上勾选了某个候选人。一次提交按勾选数产生
// 最多 6 + 8 = 14 条记录。任何票数都从这张表推导。
type VoteRecord struct {
	gorm.Model

	// SubmissionID 关联产生这条记录的提交事件
	SubmissionID uint `gorm:"index;not null"`

	// VoterID 冗余存储选民UUID，便于按选民审计
	VoterID string `gorm:"type:varchar(36);index;not null"`

	// CandidateID 是被勾选的候选人
	CandidateID string `gorm:"index;not null"`

	// Position 是这条勾选所属的职位
	Position string `gorm:"not null"`

	// ElectionID 标记这条记录属于哪一场选举
	ElectionID uint `gorm:"index;not null"`
}
