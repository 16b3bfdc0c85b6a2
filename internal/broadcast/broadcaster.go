package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// 推送是尽力而为、至多一次的。仪表盘还会周期性拉取 /api/tally 来
// 补偿丢失的事件，所以这里的任何失败都只记录日志，绝不影响已提交的选票。

// PublishTally 把一批候选人的最新票数发布到计票频道。
func PublishTally(events []TallyEvent) {
	if len(events) == 0 {
		return
	}
	if !database.IsRedisHealthy() {
		return
	}

	pipe := database.RDB.Pipeline()
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			fmt.Printf("警告: 无法序列化计票事件 (candidate=%s): %v\n", ev.CandidateID, err)
			continue
		}
		pipe.Publish(database.Ctx, TallyChannel, payload)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		fmt.Printf("警告: 发布计票事件失败: %v\n", err)
	}

	publishTallyToKafka(events)
}

// PublishStatus 把一次选举状态变更发布到状态频道。
func PublishStatus(ev StatusEvent) {
	if database.IsRedisHealthy() {
		payload, err := json.Marshal(ev)
		if err != nil {
			fmt.Printf("警告: 无法序列化状态事件 (election=%d): %v\n", ev.ElectionID, err)
			return
		}
		if err := database.RDB.Publish(database.Ctx, StatusChannel, payload).Err(); err != nil {
			fmt.Printf("警告: 发布状态事件失败: %v\n", err)
		}
	}

	publishStatusToKafka(ev)
}

// Subscribe 订阅计票和状态两个频道，供SSE推流使用。
// Redis不可用时返回nil，调用方应降级为纯轮询。
func Subscribe() *redis.PubSub {
	if !database.IsRedisHealthy() {
		return nil
	}
	return database.RDB.Subscribe(database.Ctx, TallyChannel, StatusChannel)
}
