package user

import (
	"errors"
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProvisionalVoter 生成一个临时的、尚未持久化的选民UUID。
// 这个UUID会被设置到cookie中，但此时选民尚未通过名册校验。
func CreateProvisionalVoter() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsValidUUID 检查一个字符串是否是合法的UUID格式。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsVoterEligible 检查一个UUID是否属于具备投票资格的选民。
// Redis健康时只查缓存Set；否则回落到数据库。
func IsVoterEligible(uuidStr string) (bool, error) {
	if uuidStr == "" {
		return false, nil
	}

	if database.IsRedisHealthy() {
		exists, err := database.RDB.SIsMember(database.Ctx, EligibleVotersKey, uuidStr).Result()
		if err == nil {
			return exists, nil
		}
		fmt.Printf("警告: 查询选民资格缓存失败，回落到数据库: %v\n", err)
	}

	var voter Voter
	err := database.DB.Where("uuid = ? AND profile_completed = ?", uuidStr, true).First(&voter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("查询选民记录失败: %w", err)
	}
	return true, nil
}

// ActivateVoterTx 在给定事务内把一个临时UUID正式持久化为合格选民。
// 由roster模块在名册校验通过后调用，与名册条目的消耗处于同一事务。
func ActivateVoterTx(tx *gorm.DB, uuidStr, studentNumber, firstName, lastName string) error {
	newVoter := Voter{
		UUID:             uuidStr,
		StudentNumber:    studentNumber,
		FirstName:        firstName,
		LastName:         lastName,
		ProfileCompleted: true,
	}
	if err := tx.Create(&newVoter).Error; err != nil {
		return fmt.Errorf("无法创建选民记录: %w", err)
	}
	return nil
}

// MarkEligibleInCache 在选民激活事务提交后，把UUID加入资格缓存。
// 缓存写入失败不影响已提交的注册，资格检查会回落到数据库。
func MarkEligibleInCache(uuidStr string) {
	if !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.SAdd(database.Ctx, EligibleVotersKey, uuidStr).Err(); err != nil {
		fmt.Printf("警告: 无法将选民 %s 加入资格缓存: %v\n", uuidStr, err)
	}
}
