package tally

import (
	"path/filepath"
	"testing"

	"github.com/SlpAus/usg-voting-backend/internal/candidate"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/position"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ledgerRow 是测试中用于向账本表写入数据的结构。
// 列结构与vote包的vote_records表一致。
type ledgerRow struct {
	gorm.Model
	SubmissionID uint
	VoterID      string
	CandidateID  string
	Position     string
	ElectionID   uint
}

func (ledgerRow) TableName() string { return "vote_records" }

func setupTestDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tally_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	database.DB = db

	if err := db.AutoMigrate(&candidate.Candidate{}, &ledgerRow{}); err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}
}

func seedCandidates(t *testing.T, electionID uint, byPosition map[string][]string) {
	t.Helper()
	var rows []candidate.Candidate
	for pos, ids := range byPosition {
		for _, id := range ids {
			rows = append(rows, candidate.Candidate{
				CandidateID: id,
				Name:        "候选人" + id,
				Position:    pos,
				ElectionID:  electionID,
			})
		}
	}
	if err := database.DB.Create(&rows).Error; err != nil {
		t.Fatalf("无法写入候选人: %v", err)
	}
	if err := candidate.InitializeRepository(); err != nil {
		t.Fatalf("无法初始化候选人仓库: %v", err)
	}
}

// castVotes 为一个候选人写入n条账本记录
func castVotes(t *testing.T, electionID uint, candidateID, pos string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		row := ledgerRow{
			SubmissionID: uint(i + 1),
			VoterID:      "voter",
			CandidateID:  candidateID,
			Position:     pos,
			ElectionID:   electionID,
		}
		if err := database.DB.Create(&row).Error; err != nil {
			t.Fatalf("无法写入账本记录: %v", err)
		}
	}
}

func TestCountForMatchesLedger(t *testing.T) {
	setupTestDB(t)
	seedCandidates(t, 1, map[string][]string{"president": {"pres-a", "pres-b"}})

	castVotes(t, 1, "pres-a", "president", 3)

	got, err := CountFor("pres-a")
	if err != nil {
		t.Fatalf("CountFor失败: %v", err)
	}
	if got != 3 {
		t.Errorf("CountFor(pres-a) = %d, 期望 3", got)
	}

	got, err = CountFor("pres-b")
	if err != nil {
		t.Fatalf("CountFor失败: %v", err)
	}
	if got != 0 {
		t.Errorf("CountFor(pres-b) = %d, 期望 0", got)
	}
}

func TestResultsForPositionDeterministicOrder(t *testing.T) {
	setupTestDB(t)
	seedCandidates(t, 1, map[string][]string{
		"president": {"pres-a", "pres-b", "pres-c"},
	})

	// pres-a和pres-b平票，pres-c零票
	castVotes(t, 1, "pres-a", "president", 2)
	castVotes(t, 1, "pres-b", "president", 2)

	results, err := ResultsForPosition(1, position.President)
	if err != nil {
		t.Fatalf("ResultsForPosition失败: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("结果数 = %d, 期望 3（零票候选人也在榜上）", len(results))
	}

	// 平票按候选人ID升序裁定，顺序是确定性的
	wantOrder := []string{"pres-a", "pres-b", "pres-c"}
	for i, want := range wantOrder {
		if results[i].CandidateID != want {
			t.Errorf("第%d名 = %s, 期望 %s", i+1, results[i].CandidateID, want)
		}
	}
	if results[2].Count != 0 {
		t.Errorf("pres-c票数 = %d, 期望 0", results[2].Count)
	}
}

func TestTopNSenatorSeats(t *testing.T) {
	setupTestDB(t)
	seedCandidates(t, 1, map[string][]string{
		"senator": {"sen-01", "sen-02", "sen-03"},
	})

	castVotes(t, 1, "sen-02", "senator", 5)
	castVotes(t, 1, "sen-03", "senator", 2)
	castVotes(t, 1, "sen-01", "senator", 1)

	top, err := TopN(1, position.Senator, 2)
	if err != nil {
		t.Fatalf("TopN失败: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("TopN结果数 = %d, 期望 2", len(top))
	}
	if top[0].CandidateID != "sen-02" || top[1].CandidateID != "sen-03" {
		t.Errorf("TopN = [%s %s], 期望 [sen-02 sen-03]", top[0].CandidateID, top[1].CandidateID)
	}

	// n超过候选人数时返回全部
	all, err := TopN(1, position.Senator, 10)
	if err != nil {
		t.Fatalf("TopN失败: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("TopN(10)结果数 = %d, 期望 3", len(all))
	}
}

func TestCountsScopedToElection(t *testing.T) {
	setupTestDB(t)
	seedCandidates(t, 1, map[string][]string{"president": {"pres-a"}})

	// 同名候选人ID不会跨选举，但账本行带election_id，统计按选举隔离
	castVotes(t, 1, "pres-a", "president", 2)
	castVotes(t, 2, "other", "president", 3)

	results, err := ResultsForPosition(1, position.President)
	if err != nil {
		t.Fatalf("ResultsForPosition失败: %v", err)
	}
	if len(results) != 1 || results[0].Count != 2 {
		t.Fatalf("选举1的结果 = %+v, 期望仅pres-a计2票", results)
	}
}

func TestMaxVoteRecordID(t *testing.T) {
	setupTestDB(t)
	seedCandidates(t, 1, map[string][]string{"president": {"pres-a"}})

	maxID, err := MaxVoteRecordID()
	if err != nil {
		t.Fatalf("MaxVoteRecordID失败: %v", err)
	}
	if maxID != 0 {
		t.Errorf("空账本的检查点 = %d, 期望 0", maxID)
	}

	castVotes(t, 1, "pres-a", "president", 3)
	maxID, err = MaxVoteRecordID()
	if err != nil {
		t.Fatalf("MaxVoteRecordID失败: %v", err)
	}
	if maxID == 0 {
		t.Error("写入后检查点不应为0")
	}
}
