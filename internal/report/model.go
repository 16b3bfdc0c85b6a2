package report

import (
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/position"
	"github.com/SlpAus/usg-voting-backend/internal/tally"
)

// Turnout 是一场选举的投票率统计
type Turnout struct {
	Submissions    int64   `json:"submissions"`     // 已提交的选票数
	RegisteredFrom int64   `json:"registered_from"` // 已完成注册的名册条目数
	RosterTotal    int64   `json:"roster_total"`    // 名册总条目数
	Rate           float64 `json:"rate"`            // submissions / roster_total
}

// PositionResult 是一个职位的完整结果
type PositionResult struct {
	Position  position.ID            `json:"position"`
	SeatCount int                    `json:"seat_count"`
	Rankings  []tally.CandidateCount `json:"rankings"`
	Winners   []string               `json:"winners"`
}

// ElectionReport 是一场选举的汇总报告。
// 所有票数都来自账本的重新统计，不依赖缓存中的镜像。
type ElectionReport struct {
	ElectionID  uint             `json:"election_id"`
	Name        string           `json:"name"`
	Status      string           `json:"status"`
	GeneratedAt time.Time        `json:"generated_at"`
	Turnout     Turnout          `json:"turnout"`
	Positions   []PositionResult `json:"positions"`
}
