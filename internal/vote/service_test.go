package vote

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/ballot"
	"github.com/SlpAus/usg-voting-backend/internal/candidate"
	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/platform/metadata"
	"github.com/SlpAus/usg-voting-backend/internal/tally"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 为每个测试准备一个独立的sqlite数据库。
// 限制为单连接，写入串行化，并发测试的结果是确定性的。
func setupTestDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "vote_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("无法获取底层连接: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	err = db.AutoMigrate(
		&metadata.Metadata{},
		&election.Election{},
		&candidate.Candidate{},
		&Submission{},
		&VoteRecord{},
	)
	if err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}
}

// seedOpenElection 建立一场开放中的选举和一组候选人
func seedOpenElection(t *testing.T) *election.Election {
	t.Helper()

	e, err := election.CreateElection("学生会换届选举", nil, nil)
	if err != nil {
		t.Fatalf("无法创建选举: %v", err)
	}
	if _, err := election.StartElection(e.ID); err != nil {
		t.Fatalf("无法开启选举: %v", err)
	}

	candidates := []candidate.Candidate{
		{CandidateID: "pres-a", Name: "甲", Position: "president", ElectionID: e.ID},
		{CandidateID: "pres-b", Name: "乙", Position: "president", ElectionID: e.ID},
		{CandidateID: "treas-a", Name: "丙", Position: "treasurer", ElectionID: e.ID},
		{CandidateID: "sen-01", Name: "丁", Position: "senator", ElectionID: e.ID},
		{CandidateID: "sen-02", Name: "戊", Position: "senator", ElectionID: e.ID},
	}
	if err := database.DB.Create(&candidates).Error; err != nil {
		t.Fatalf("无法写入候选人: %v", err)
	}
	if err := candidate.InitializeRepository(); err != nil {
		t.Fatalf("无法初始化候选人仓库: %v", err)
	}
	return e
}

func countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := database.DB.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("无法统计行数: %v", err)
	}
	return n
}

func TestSubmitBallotWritesLedger(t *testing.T) {
	setupTestDB(t)
	e := seedOpenElection(t)

	receipt, err := SubmitBallot("voter-1", ballot.Ballot{
		President: "pres-a",
		Treasurer: "treas-a",
		Senator:   []string{"sen-01", "sen-02"},
	})
	if err != nil {
		t.Fatalf("SubmitBallot失败: %v", err)
	}
	if receipt.ElectionID != e.ID {
		t.Errorf("回执选举ID = %d, 期望 %d", receipt.ElectionID, e.ID)
	}
	if receipt.RecordCount != 4 {
		t.Errorf("回执记录数 = %d, 期望 4", receipt.RecordCount)
	}

	if n := countRows(t, &Submission{}); n != 1 {
		t.Errorf("提交事件数 = %d, 期望 1", n)
	}
	if n := countRows(t, &VoteRecord{}); n != 4 {
		t.Errorf("账本记录数 = %d, 期望 4", n)
	}

	// 票数从账本推导
	for id, want := range map[string]int64{"pres-a": 1, "pres-b": 0, "treas-a": 1, "sen-01": 1} {
		got, err := tally.CountFor(id)
		if err != nil {
			t.Fatalf("CountFor(%s)失败: %v", id, err)
		}
		if got != want {
			t.Errorf("CountFor(%s) = %d, 期望 %d", id, got, want)
		}
	}
}

func TestSecondBallotWhollyRejected(t *testing.T) {
	setupTestDB(t)
	seedOpenElection(t)

	if _, err := SubmitBallot("voter-1", ballot.Ballot{President: "pres-a"}); err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	// 第二张选票内容完全不同，依然整体拒绝
	_, err := SubmitBallot("voter-1", ballot.Ballot{President: "pres-b", Senator: []string{"sen-01"}})
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("期望ErrAlreadyVoted, 得到: %v", err)
	}

	// 账本没有第二张选票的任何痕迹
	if n := countRows(t, &VoteRecord{}); n != 1 {
		t.Errorf("账本记录数 = %d, 期望 1", n)
	}
	if got, _ := tally.CountFor("pres-b"); got != 0 {
		t.Errorf("CountFor(pres-b) = %d, 期望 0", got)
	}
}

func TestAbstainBallotConsumesAllowance(t *testing.T) {
	setupTestDB(t)
	seedOpenElection(t)

	receipt, err := SubmitBallot("voter-1", ballot.Ballot{})
	if err != nil {
		t.Fatalf("全弃权提交失败: %v", err)
	}
	if receipt.RecordCount != 0 {
		t.Errorf("回执记录数 = %d, 期望 0", receipt.RecordCount)
	}
	if n := countRows(t, &Submission{}); n != 1 {
		t.Errorf("提交事件数 = %d, 期望 1", n)
	}

	// 弃权同样消耗一人一票的额度
	if _, err := SubmitBallot("voter-1", ballot.Ballot{President: "pres-a"}); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("期望ErrAlreadyVoted, 得到: %v", err)
	}
}

func TestSubmitOutsideOpenWindow(t *testing.T) {
	setupTestDB(t)
	e := seedOpenElection(t)

	// 暂停后拒收
	if _, err := election.PauseElection(e.ID); err != nil {
		t.Fatalf("无法暂停选举: %v", err)
	}
	if _, err := SubmitBallot("voter-1", ballot.Ballot{President: "pres-a"}); !errors.Is(err, ErrElectionNotOpen) {
		t.Fatalf("暂停中期望ErrElectionNotOpen, 得到: %v", err)
	}

	// 重新开启但已过截止时间，同样拒收
	if _, err := election.StartElection(e.ID); err != nil {
		t.Fatalf("无法重新开启选举: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := database.DB.Model(&election.Election{}).Where("id = ?", e.ID).Update("end_time", past).Error; err != nil {
		t.Fatalf("无法设置截止时间: %v", err)
	}
	if _, err := SubmitBallot("voter-1", ballot.Ballot{President: "pres-a"}); !errors.Is(err, ErrElectionNotOpen) {
		t.Fatalf("过期后期望ErrElectionNotOpen, 得到: %v", err)
	}

	if n := countRows(t, &Submission{}); n != 0 {
		t.Errorf("提交事件数 = %d, 期望 0", n)
	}
}

func TestInvalidCandidateLeavesNoTrace(t *testing.T) {
	setupTestDB(t)
	seedOpenElection(t)

	_, err := SubmitBallot("voter-1", ballot.Ballot{President: "ghost"})
	var ve *ballot.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("期望ValidationError, 得到: %v", err)
	}
	if ve.Code != ballot.CodeInvalidCandidate {
		t.Errorf("错误码 = %s, 期望 %s", ve.Code, ballot.CodeInvalidCandidate)
	}

	if n := countRows(t, &Submission{}); n != 0 {
		t.Errorf("提交事件数 = %d, 期望 0", n)
	}
	// 被拒绝的选票不消耗额度
	if _, err := SubmitBallot("voter-1", ballot.Ballot{President: "pres-a"}); err != nil {
		t.Fatalf("修正后的提交应当成功: %v", err)
	}
}

func TestConcurrentSameVoterOnlyOneWins(t *testing.T) {
	setupTestDB(t)
	seedOpenElection(t)

	ballots := []ballot.Ballot{
		{President: "pres-a"},
		{President: "pres-b"},
	}

	var wg sync.WaitGroup
	results := make([]error, len(ballots))
	for i := range ballots {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = SubmitBallot("voter-1", ballots[i])
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyVoted):
			rejected++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("成功 %d 次, 拒绝 %d 次, 期望各1次", succeeded, rejected)
	}
	if n := countRows(t, &Submission{}); n != 1 {
		t.Errorf("提交事件数 = %d, 期望 1", n)
	}
	if n := countRows(t, &VoteRecord{}); n != 1 {
		t.Errorf("账本记录数 = %d, 期望 1", n)
	}
}

func TestFailedTransactionLeavesNoPartialWrites(t *testing.T) {
	setupTestDB(t)
	e := seedOpenElection(t)

	selections := []ballot.Selection{
		{Position: "president", CandidateID: "pres-a"},
		{Position: "senator", CandidateID: "sen-01"},
	}

	// 在提交事件和账本记录都写入后强制让事务失败
	forced := errors.New("forced failure")
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := persistSubmission(tx, "voter-1", e.ID, selections); err != nil {
			t.Fatalf("persistSubmission失败: %v", err)
		}
		return forced
	})
	if !errors.Is(err, forced) {
		t.Fatalf("期望强制错误, 得到: %v", err)
	}

	// 整体回滚：提交事件和账本记录都不存在
	if n := countRows(t, &Submission{}); n != 0 {
		t.Errorf("提交事件数 = %d, 期望 0", n)
	}
	if n := countRows(t, &VoteRecord{}); n != 0 {
		t.Errorf("账本记录数 = %d, 期望 0", n)
	}
	// 额度未被消耗，重试应当成功
	if _, err := SubmitBallot("voter-1", ballot.Ballot{President: "pres-a"}); err != nil {
		t.Fatalf("回滚后的重试应当成功: %v", err)
	}
}
