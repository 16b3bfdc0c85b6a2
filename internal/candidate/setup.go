package candidate

import (
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Candidate{}); err != nil {
		return fmt.Errorf("无法迁移candidate表: %w", err)
	}
	fmt.Println("Candidate数据库表迁移成功。")
	return nil
}

// PrimeCachedDB 是candidate模块的初始化总入口
func PrimeCachedDB() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := InitializeRepository(); err != nil {
		return err
	}
	return nil
}
