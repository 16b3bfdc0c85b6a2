package tally

import (
	"fmt"
	"sort"

	"github.com/SlpAus/usg-voting-backend/internal/candidate"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/position"
	"gorm.io/gorm"
)

// voteRow 是选票账本行的只读镜像，只用于计数查询。
// 列结构与vote包的vote_records表保持一致；账本的写入只发生在vote包的
// 事务边界内，本包永远不写这张表。
type voteRow struct {
	CandidateID string
	Position    string
	ElectionID  uint
	DeletedAt   gorm.DeletedAt
}

func (voteRow) TableName() string { return "vote_records" }

// CandidateCount 是一个候选人的权威票数
type CandidateCount struct {
	CandidateID string      `json:"candidate_id"`
	Name        string      `json:"name"`
	Position    position.ID `json:"position"`
	Count       int64       `json:"count"`
}

// CountFor 返回一个候选人的权威票数：账本中引用它的选票行数。
// 读取直接命中账本，因此总能看到所有已提交的写入。
func CountFor(candidateID string) (int64, error) {
	var count int64
	err := database.DB.Model(&voteRow{}).Where("candidate_id = ?", candidateID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("无法统计候选人 %s 的票数: %w", candidateID, err)
	}
	return count, nil
}

// CountsForCandidates 批量返回一组候选人的权威票数。
// 账本中没有选票的候选人计为0。
func CountsForCandidates(candidateIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(candidateIDs))
	for _, id := range candidateIDs {
		counts[id] = 0
	}
	if len(candidateIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CandidateID string
		Total       int64
	}
	err := database.DB.Model(&voteRow{}).
		Select("candidate_id, count(*) as total").
		Where("candidate_id IN ?", candidateIDs).
		Group("candidate_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法批量统计票数: %w", err)
	}

	for _, row := range rows {
		counts[row.CandidateID] = row.Total
	}
	return counts, nil
}

// countsForElection 返回一场选举的全部非零票数。
func countsForElection(electionID uint) (map[string]int64, error) {
	var rows []struct {
		CandidateID string
		Total       int64
	}
	err := database.DB.Model(&voteRow{}).
		Select("candidate_id, count(*) as total").
		Where("election_id = ?", electionID).
		Group("candidate_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法统计选举 %d 的票数: %w", electionID, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CandidateID] = row.Total
	}
	return counts, nil
}

// sortCounts 按票数降序排列；票数相同按候选人ID升序。
// 平局裁定规则是确定性的：候选人标识升序。
func sortCounts(results []CandidateCount) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].CandidateID < results[j].CandidateID
	})
}

// ResultsForPosition 返回一场选举中某职位的完整排名，包含零票的候选人。
func ResultsForPosition(electionID uint, pos position.ID) ([]CandidateCount, error) {
	ids := candidate.IDsForPosition(electionID, pos)
	counts, err := CountsForCandidates(ids)
	if err != nil {
		return nil, err
	}

	results := make([]CandidateCount, 0, len(ids))
	for _, id := range ids {
		info, _ := candidate.GetInfo(id)
		results = append(results, CandidateCount{
			CandidateID: id,
			Name:        info.Name,
			Position:    pos,
			Count:       counts[id],
		})
	}
	sortCounts(results)
	return results, nil
}

// TopN 返回一场选举中某职位票数最高的n名候选人。
func TopN(electionID uint, pos position.ID, n int) ([]CandidateCount, error) {
	results, err := ResultsForPosition(electionID, pos)
	if err != nil {
		return nil, err
	}
	if n < len(results) {
		results = results[:n]
	}
	return results, nil
}

// MaxVoteRecordID 返回账本中最大的选票行ID，作为缓存重建的检查点。
func MaxVoteRecordID() (uint, error) {
	var maxID *uint
	err := database.DB.Model(&voteRow{}).Select("max(id)").Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	if maxID == nil {
		return 0, nil
	}
	return *maxID, nil
}
