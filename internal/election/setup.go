package election

import (
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
)

// PrimeDB 负责初始化election模块的数据库表结构
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Election{}); err != nil {
		return fmt.Errorf("无法迁移election表: %w", err)
	}
	fmt.Println("Election数据库表迁移成功。")
	return nil
}
