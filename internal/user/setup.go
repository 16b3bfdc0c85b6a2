package user

import (
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Voter{}); err != nil {
		return fmt.Errorf("无法迁移voter表: %w", err)
	}
	fmt.Println("Voter数据库表迁移成功。")
	return nil
}

// WarmupCache 从数据库加载所有合格选民的UUID，预热到Redis的Set中
func WarmupCache() error {
	if !database.IsRedisHealthy() {
		fmt.Println("Redis不可用，跳过选民资格缓存预热。")
		return nil
	}

	var voters []Voter
	if err := database.DB.Select("uuid").Where("profile_completed = ?", true).Find(&voters).Error; err != nil {
		return fmt.Errorf("无法从数据库读取选民UUID: %w", err)
	}

	// 先清空旧的缓存，确保数据一致性
	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, EligibleVotersKey)
	if len(voters) > 0 {
		voterUUIDs := make([]interface{}, len(voters))
		for i, v := range voters {
			voterUUIDs[i] = v.UUID
		}
		pipe.SAdd(database.Ctx, EligibleVotersKey, voterUUIDs...)
	}

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热选民UUID到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个合格选民UUID到Redis。\n", len(voters))
	return nil
}

// PrimeCachedDB 是user模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
