package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotInRoster 表示学号不存在于名册，或姓名与名册不符
	ErrNotInRoster = errors.New("名册中找不到匹配的学生")
	// ErrAlreadyRegistered 表示该名册条目已被一次成功注册消耗
	ErrAlreadyRegistered = errors.New("该学号已完成注册")
)

// Register 校验注册申请并原子地消耗名册条目。
// 校验、条目消耗和选民创建在同一个事务内完成，行锁保证同一学号的
// 并发注册只有一个能成功。
func Register(voterUUID, studentNumber, firstName, lastName string) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var entry Entry
		// 行锁防止同一条目被并发注册同时消耗
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_number = ?", studentNumber).
			First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotInRoster
			}
			return fmt.Errorf("查询名册失败: %w", err)
		}

		// 姓名比对不区分大小写和首尾空白
		if !namesMatch(entry.FirstName, firstName) || !namesMatch(entry.LastName, lastName) {
			return ErrNotInRoster
		}

		if entry.Consumed {
			return ErrAlreadyRegistered
		}

		if err := tx.Model(&entry).Update("consumed", true).Error; err != nil {
			return fmt.Errorf("无法消耗名册条目: %w", err)
		}

		if err := user.ActivateVoterTx(tx, voterUUID, entry.StudentNumber, entry.FirstName, entry.LastName); err != nil {
			if database.IsDuplicateKeyError(err) {
				// 同一学号或同一cookie重复注册
				return ErrAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 事务提交后才更新资格缓存，失败不影响注册结果
	user.MarkEligibleInCache(voterUUID)
	return nil
}

func namesMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
