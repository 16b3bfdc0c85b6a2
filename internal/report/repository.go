package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "report:election:"

// GetReportCache 尝试从Redis读取一份缓存的选举报告。
// 缓存未命中返回(nil, nil)。
func GetReportCache(electionID uint) (*ElectionReport, error) {
	if !database.IsRedisHealthy() {
		return nil, nil
	}

	key := fmt.Sprintf("%s%d", reportKeyPrefix, electionID)
	data, err := database.RDB.Get(database.Ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("读取报告缓存失败: %w", err)
	}

	var cached ElectionReport
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("反序列化报告缓存失败: %w", err)
	}
	return &cached, nil
}

// SetReportCache 把一份报告写入Redis并设置过期时间。
func SetReportCache(r *ElectionReport, ttl time.Duration) error {
	if !database.IsRedisHealthy() {
		return nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	key := fmt.Sprintf("%s%d", reportKeyPrefix, r.ElectionID)
	return database.RDB.Set(database.Ctx, key, data, ttl).Err()
}
