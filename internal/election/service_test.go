package election

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/platform/metadata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "election_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	database.DB = db

	if err := db.AutoMigrate(&metadata.Metadata{}, &Election{}); err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}
	// 级联删除涉及的表在别的模块里，测试中按表名建出最小结构
	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS vote_records (id integer primary key, election_id integer)",
		"CREATE TABLE IF NOT EXISTS submissions (id integer primary key, election_id integer)",
		"CREATE TABLE IF NOT EXISTS candidates (id integer primary key, election_id integer)",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("无法建表: %v", err)
		}
	}
}

func TestStartElectionSetsCurrent(t *testing.T) {
	setupTestDB(t)

	e, err := CreateElection("秋季选举", nil, nil)
	if err != nil {
		t.Fatalf("CreateElection失败: %v", err)
	}
	if e.Status != StatusCreated {
		t.Errorf("初始状态 = %s, 期望 %s", e.Status, StatusCreated)
	}

	// Created状态不接受选票
	if _, err := CurrentOpen(time.Now()); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("开启前期望ErrNotOpen, 得到: %v", err)
	}

	if _, err := StartElection(e.ID); err != nil {
		t.Fatalf("StartElection失败: %v", err)
	}

	open, err := CurrentOpen(time.Now())
	if err != nil {
		t.Fatalf("CurrentOpen失败: %v", err)
	}
	if open.ID != e.ID {
		t.Errorf("当前选举 = %d, 期望 %d", open.ID, e.ID)
	}
}

func TestCurrentOpenGates(t *testing.T) {
	setupTestDB(t)

	e, err := CreateElection("秋季选举", nil, nil)
	if err != nil {
		t.Fatalf("CreateElection失败: %v", err)
	}
	if _, err := StartElection(e.ID); err != nil {
		t.Fatalf("StartElection失败: %v", err)
	}

	// 暂停中拒收
	if _, err := PauseElection(e.ID); err != nil {
		t.Fatalf("PauseElection失败: %v", err)
	}
	if _, err := CurrentOpen(time.Now()); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("暂停中期望ErrNotOpen, 得到: %v", err)
	}

	// 重新开启后恢复接收
	if _, err := StartElection(e.ID); err != nil {
		t.Fatalf("重新开启失败: %v", err)
	}
	if _, err := CurrentOpen(time.Now()); err != nil {
		t.Fatalf("重新开启后CurrentOpen失败: %v", err)
	}

	// 过了截止时间拒收，即使状态还是Started
	past := time.Now().Add(-time.Minute)
	if err := database.DB.Model(&Election{}).Where("id = ?", e.ID).Update("end_time", past).Error; err != nil {
		t.Fatalf("无法设置截止时间: %v", err)
	}
	if _, err := CurrentOpen(time.Now()); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("过期后期望ErrNotOpen, 得到: %v", err)
	}
}

func TestPauseIsIdempotent(t *testing.T) {
	setupTestDB(t)

	e, err := CreateElection("秋季选举", nil, nil)
	if err != nil {
		t.Fatalf("CreateElection失败: %v", err)
	}
	if _, err := StartElection(e.ID); err != nil {
		t.Fatalf("StartElection失败: %v", err)
	}

	for i := 0; i < 3; i++ {
		paused, err := PauseElection(e.ID)
		if err != nil {
			t.Fatalf("第%d次Pause失败: %v", i+1, err)
		}
		if paused.Status != StatusPaused {
			t.Errorf("第%d次Pause后状态 = %s, 期望 %s", i+1, paused.Status, StatusPaused)
		}
	}
}

func TestCloseIfExpiredVerifiesServerTime(t *testing.T) {
	setupTestDB(t)

	end := time.Now().Add(time.Hour)
	e, err := CreateElection("秋季选举", nil, &end)
	if err != nil {
		t.Fatalf("CreateElection失败: %v", err)
	}
	if _, err := StartElection(e.ID); err != nil {
		t.Fatalf("StartElection失败: %v", err)
	}

	// 客户端声称已到期，但服务器时间没到：拒绝
	if _, err := CloseIfExpired(e.ID, time.Now()); !errors.Is(err, ErrNotExpired) {
		t.Fatalf("未到期时期望ErrNotExpired, 得到: %v", err)
	}

	// 服务器时间确认已过截止时间：关闭
	closed, err := CloseIfExpired(e.ID, end.Add(time.Second))
	if err != nil {
		t.Fatalf("到期关闭失败: %v", err)
	}
	if closed.Status != StatusPaused {
		t.Errorf("关闭后状态 = %s, 期望 %s", closed.Status, StatusPaused)
	}

	// 重复关闭是幂等的成功
	if _, err := CloseIfExpired(e.ID, end.Add(time.Minute)); err != nil {
		t.Fatalf("重复关闭应当成功: %v", err)
	}
}

func TestCloseIfExpiredWithoutEndTime(t *testing.T) {
	setupTestDB(t)

	e, err := CreateElection("秋季选举", nil, nil)
	if err != nil {
		t.Fatalf("CreateElection失败: %v", err)
	}
	if _, err := StartElection(e.ID); err != nil {
		t.Fatalf("StartElection失败: %v", err)
	}

	// 没有截止时间的选举不能经由到期路径关闭
	if _, err := CloseIfExpired(e.ID, time.Now()); !errors.Is(err, ErrNotExpired) {
		t.Fatalf("期望ErrNotExpired, 得到: %v", err)
	}
}

func TestCloseIfExpiredUnknownElection(t *testing.T) {
	setupTestDB(t)

	if _, err := CloseIfExpired(42, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望ErrNotFound, 得到: %v", err)
	}
}

func TestDeleteElectionClearsPointer(t *testing.T) {
	setupTestDB(t)

	e, err := CreateElection("秋季选举", nil, nil)
	if err != nil {
		t.Fatalf("CreateElection失败: %v", err)
	}
	if _, err := StartElection(e.ID); err != nil {
		t.Fatalf("StartElection失败: %v", err)
	}

	if err := DeleteElection(e.ID); err != nil {
		t.Fatalf("DeleteElection失败: %v", err)
	}

	if _, err := GetByID(e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("删除后期望ErrNotFound, 得到: %v", err)
	}
	currentID, err := metadata.GetCurrentElectionID(database.DB)
	if err != nil {
		t.Fatalf("读取当前选举指针失败: %v", err)
	}
	if currentID != 0 {
		t.Errorf("当前选举指针 = %d, 期望已清空", currentID)
	}
}
