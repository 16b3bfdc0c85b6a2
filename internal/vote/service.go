package vote

import (
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/ballot"
	"github.com/SlpAus/usg-voting-backend/internal/broadcast"
	"github.com/SlpAus/usg-voting-backend/internal/candidate"
	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/tally"
	"gorm.io/gorm"
)

// Receipt 是一次成功提交的回执
type Receipt struct {
	ElectionID   uint `json:"election_id"`
	SubmissionID uint `json:"submission_id"`
	RecordCount  int  `json:"record_count"`
}

// SubmitBallot 是把一张选票变成账本记录的唯一入口。
// 前置检查按顺序执行：选举门禁、选票形状校验、一人一票仲裁；
// 所有账本写入在单个事务内完成，要么全部落库要么全部回滚。
func SubmitBallot(voterID string, b ballot.Ballot) (*Receipt, error) {
	now := time.Now()

	// 1. 选举门禁：必须存在Started且未过截止时间的选举
	e, err := election.CurrentOpen(now)
	if err != nil {
		if errors.Is(err, election.ErrNotOpen) {
			return nil, ErrElectionNotOpen
		}
		return nil, fmt.Errorf("无法读取选举状态: %w", err)
	}

	// 2. 选票形状校验与规范化（候选人查找限定在本场选举内）
	selections, err := b.Normalize(candidate.LookupForElection(e.ID))
	if err != nil {
		return nil, err
	}

	// 3. 单事务写入账本。
	// 全弃权的选票也会创建提交事件——它同样消耗一人一票的额度。
	var submission *Submission
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		submission, txErr = persistSubmission(tx, voterID, e.ID, selections)
		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyVoted) {
			return nil, ErrAlreadyVoted
		}
		if database.IsRetryableError(err) {
			fmt.Printf("警告: 选票事务失败，已整体回滚 (voter=%s): %v\n", voterID, err)
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailure, err)
		}
		return nil, fmt.Errorf("选票写入失败: %w", err)
	}

	// 4. 提交成功后的副作用：重算触及的候选人并广播。
	// 这里的任何失败都不影响已提交的选票，账本兜底。
	refreshAndBroadcast(e.ID, selections)

	return &Receipt{
		ElectionID:   e.ID,
		SubmissionID: submission.ID,
		RecordCount:  len(selections),
	}, nil
}

// persistSubmission 在给定事务内创建提交事件和全部选票记录。
// 提交事件的唯一约束冲突被翻译为ErrAlreadyVoted。
func persistSubmission(tx *gorm.DB, voterID string, electionID uint, selections []ballot.Selection) (*Submission, error) {
	submission := Submission{
		VoterID:    voterID,
		ElectionID: electionID,
	}
	if err := tx.Create(&submission).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("无法创建提交事件: %w", err)
	}

	if len(selections) == 0 {
		return &submission, nil
	}

	records := make([]VoteRecord, len(selections))
	for i, sel := range selections {
		records[i] = VoteRecord{
			SubmissionID: submission.ID,
			VoterID:      voterID,
			CandidateID:  sel.CandidateID,
			Position:     string(sel.Position),
			ElectionID:   electionID,
		}
	}
	if err := tx.Create(&records).Error; err != nil {
		return nil, fmt.Errorf("无法写入选票记录: %w", err)
	}

	return &submission, nil
}

// refreshAndBroadcast 重算一次提交触及的候选人票数，刷新缓存并广播。
func refreshAndBroadcast(electionID uint, selections []ballot.Selection) {
	if len(selections) == 0 {
		return
	}

	seen := make(map[string]bool, len(selections))
	touched := make([]string, 0, len(selections))
	for _, sel := range selections {
		if !seen[sel.CandidateID] {
			seen[sel.CandidateID] = true
			touched = append(touched, sel.CandidateID)
		}
	}

	events, err := tally.RefreshCandidates(electionID, touched)
	if err != nil {
		fmt.Printf("警告: 提交后重算票数失败（账本已提交）: %v\n", err)
		return
	}
	broadcast.PublishTally(events)
}
