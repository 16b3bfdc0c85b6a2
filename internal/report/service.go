package report

import (
	"fmt"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/position"
	"github.com/SlpAus/usg-voting-backend/internal/roster"
	"github.com/SlpAus/usg-voting-backend/internal/tally"
	"github.com/SlpAus/usg-voting-backend/internal/vote"
)

const (
	// CacheTTL 是报告缓存的有效期。报告是聚合视图，允许分钟级滞后。
	CacheTTL = 1 * time.Minute
)

// GenerateElectionReport 是生成选举报告的统一入口。
// 命中缓存直接返回；否则从账本重新统计并异步回填缓存。
func GenerateElectionReport(e *election.Election) (*ElectionReport, error) {
	if cached, err := GetReportCache(e.ID); err == nil && cached != nil {
		return cached, nil
	}

	r, err := buildReport(e)
	if err != nil {
		return nil, err
	}

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				fmt.Printf("严重错误: 缓存报告的goroutine发生panic: %v\n", rec)
			}
		}()
		if err := SetReportCache(r, CacheTTL); err != nil {
			fmt.Printf("警告: 写入报告缓存失败: %v\n", err)
		}
	}()

	return r, nil
}

// buildReport 从账本和名册重新统计一场选举的完整报告。
func buildReport(e *election.Election) (*ElectionReport, error) {
	r := &ElectionReport{
		ElectionID:  e.ID,
		Name:        e.Name,
		Status:      string(e.Status),
		GeneratedAt: time.Now(),
	}

	// 投票率：提交事件数 / 名册总数
	if err := database.DB.Model(&vote.Submission{}).
		Where("election_id = ?", e.ID).
		Count(&r.Turnout.Submissions).Error; err != nil {
		return nil, fmt.Errorf("无法统计提交数: %w", err)
	}
	if err := database.DB.Model(&roster.Entry{}).
		Count(&r.Turnout.RosterTotal).Error; err != nil {
		return nil, fmt.Errorf("无法统计名册总数: %w", err)
	}
	if err := database.DB.Model(&roster.Entry{}).
		Where("consumed = ?", true).
		Count(&r.Turnout.RegisteredFrom).Error; err != nil {
		return nil, fmt.Errorf("无法统计已注册数: %w", err)
	}
	if r.Turnout.RosterTotal > 0 {
		r.Turnout.Rate = float64(r.Turnout.Submissions) / float64(r.Turnout.RosterTotal)
	}

	// 各职位的完整排名与当选者。
	// 当选者按确定性的排序规则截取席位数，平票不做随机裁定。
	for _, pos := range position.All() {
		rankings, err := tally.ResultsForPosition(e.ID, pos)
		if err != nil {
			return nil, err
		}

		seats := position.SeatCount(pos)
		winners := make([]string, 0, seats)
		for i, c := range rankings {
			if i >= seats {
				break
			}
			winners = append(winners, c.CandidateID)
		}

		r.Positions = append(r.Positions, PositionResult{
			Position:  pos,
			SeatCount: seats,
			Rankings:  rankings,
			Winners:   winners,
		})
	}

	return r, nil
}
