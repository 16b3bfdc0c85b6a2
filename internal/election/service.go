package election

import (
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/broadcast"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/platform/metadata"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 表示目标选举不存在
	ErrNotFound = errors.New("选举不存在")
	// ErrNotOpen 表示当前没有接受选票的选举（缺失、暂停或已过截止时间）
	ErrNotOpen = errors.New("选举当前不接受选票")
	// ErrNotExpired 表示关闭请求声称选举已到期，但服务器时间并未到期
	ErrNotExpired = errors.New("选举尚未到达截止时间")
)

// GetByID 按主键加载一场选举。
func GetByID(id uint) (*Election, error) {
	var e Election
	if err := database.DB.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// CurrentOpen 返回当前正在接受选票的选举。
// 指针存放在metadata中，由StartElection写入；任何门禁不通过都返回ErrNotOpen。
func CurrentOpen(now time.Time) (*Election, error) {
	currentID, err := metadata.GetCurrentElectionID(database.DB)
	if err != nil {
		return nil, err
	}
	if currentID == 0 {
		return nil, ErrNotOpen
	}

	e, err := GetByID(currentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotOpen
		}
		return nil, err
	}
	if !e.IsOpen(now) {
		return nil, ErrNotOpen
	}
	return e, nil
}

// Current 返回metadata指向的选举（不做开放性门禁），供状态查询和看板使用。
func Current() (*Election, error) {
	currentID, err := metadata.GetCurrentElectionID(database.DB)
	if err != nil {
		return nil, err
	}
	if currentID == 0 {
		return nil, ErrNotFound
	}
	return GetByID(currentID)
}

// CreateElection 创建一场新选举，初始状态为Created。
func CreateElection(name string, startTime, endTime *time.Time) (*Election, error) {
	e := Election{
		Name:      name,
		Status:    StatusCreated,
		StartTime: startTime,
		EndTime:   endTime,
	}
	if err := database.DB.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("无法创建选举: %w", err)
	}
	return &e, nil
}

// StartElection 把一场选举置为Started，并把metadata的当前选举指针指向它。
// 对Paused的选举调用等价于重新开放投票。
func StartElection(id uint) (*Election, error) {
	e, err := GetByID(id)
	if err != nil {
		return nil, err
	}

	changed := e.Status != StatusStarted
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Election{}).Where("id = ?", id).Update("status", StatusStarted).Error; err != nil {
			return err
		}
		return metadata.SetCurrentElectionID(tx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("无法开启选举: %w", err)
	}

	e.Status = StatusStarted
	if changed {
		broadcast.PublishStatus(broadcast.StatusEvent{
			ElectionID: e.ID,
			Status:     string(StatusStarted),
			At:         time.Now(),
		})
	}
	return e, nil
}

// PauseElection 把一场选举置为Paused。
// 幂等：对已经Paused的选举调用是无操作的成功，不是错误。
func PauseElection(id uint) (*Election, error) {
	e, err := GetByID(id)
	if err != nil {
		return nil, err
	}
	if e.Status == StatusPaused {
		return e, nil
	}

	if err := database.DB.Model(&Election{}).Where("id = ?", id).Update("status", StatusPaused).Error; err != nil {
		return nil, fmt.Errorf("无法暂停选举: %w", err)
	}
	e.Status = StatusPaused

	broadcast.PublishStatus(broadcast.StatusEvent{
		ElectionID: e.ID,
		Status:     string(StatusPaused),
		At:         time.Now(),
	})
	return e, nil
}

// CloseIfExpired 处理来自客户端倒计时的关闭请求。
// 客户端报告的"已到期"是不可信输入：只有当服务器时间确认选举已过
// 截止时间，才会执行关闭。对已经Paused的选举幂等地返回成功。
func CloseIfExpired(id uint, now time.Time) (*Election, error) {
	e, err := GetByID(id)
	if err != nil {
		return nil, err
	}
	if e.Status == StatusPaused {
		return e, nil
	}
	if e.EndTime == nil || now.Before(*e.EndTime) {
		return nil, ErrNotExpired
	}
	return PauseElection(id)
}

// DeleteElection 删除一场选举及其级联数据（选票账本、提交事件、候选人）。
// 管理端在调用前已经完成了操作者的凭证确认。
func DeleteElection(id uint) error {
	e, err := GetByID(id)
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// 账本表由vote模块持有，这里按表名级联清除，避免包级循环依赖
		if err := tx.Exec("DELETE FROM vote_records WHERE election_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM submissions WHERE election_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM candidates WHERE election_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&Election{}, id).Error; err != nil {
			return err
		}

		currentID, err := metadata.GetCurrentElectionID(tx)
		if err != nil {
			return err
		}
		if currentID == id {
			return metadata.ClearCurrentElectionID(tx)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("无法删除选举 %d: %w", id, err)
	}

	broadcast.PublishStatus(broadcast.StatusEvent{
		ElectionID: e.ID,
		Status:     "Deleted",
		At:         time.Now(),
	})
	return nil
}
