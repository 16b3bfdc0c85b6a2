package vote

import (
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
)

// PrimeDB 负责初始化vote模块的数据库表结构。
// 迁移Submission时会一并创建(voter_id, election_id)联合唯一索引。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Submission{}, &VoteRecord{}); err != nil {
		return fmt.Errorf("无法迁移vote表: %w", err)
	}
	fmt.Println("Vote数据库表迁移成功。")
	return nil
}
