package vote

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// ipSubmitKeyPrefix 是Redis中IP提交计数有序集合的键名前缀
	ipSubmitKeyPrefix = "ip_submits:"
	// ipSubmitWindow 定义了IP提交计数的滑动时间窗口
	ipSubmitWindow = time.Minute
	// ipSubmitTTL 是每个IP记录的生存时间，比窗口稍长以作缓冲
	ipSubmitTTL = 2 * time.Minute
)

// generateMemberID 根据给定的时间生成一个16字节的抗冲突成员ID。
// 结构: [ 8字节纳秒时间戳 (Big Endian) | 8字节随机数 ]
func generateMemberID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// incrementIPSubmitCount 在Redis中为一个IP原子地记录一次提交尝试，
// 并返回其在过去ipSubmitWindow内的总次数。
func incrementIPSubmitCount(ip string, now time.Time) (int64, error) {
	key := ipSubmitKeyPrefix + ip
	minTimestamp := float64(now.Add(-ipSubmitWindow).UnixMicro())

	memberID, err := generateMemberID(now)
	if err != nil {
		return 0, fmt.Errorf("生成成员ID失败: %w", err)
	}

	// Redis事务保证清理、计入、计数三步的原子性
	pipe := database.RDB.TxPipeline()
	pipe.ZRemRangeByScore(database.Ctx, key, "-inf", fmt.Sprintf("(%f", minTimestamp))
	pipe.ZAdd(database.Ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: memberID})
	pipe.Expire(database.Ctx, key, ipSubmitTTL)
	countCmd := pipe.ZCard(database.Ctx, key)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return 0, fmt.Errorf("执行IP计数事务失败: %w", err)
	}
	return countCmd.Result()
}

// RateLimitMiddleware 按来源IP对提交尝试做滑动窗口限流。
// Redis不可用时放行——限流是保护手段，不是正确性前提，
// 一人一票由数据库约束兜底。
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perMinute <= 0 || !database.IsRedisHealthy() {
			c.Next()
			return
		}

		count, err := incrementIPSubmitCount(c.ClientIP(), time.Now())
		if err != nil {
			fmt.Printf("警告: IP限流计数失败，本次放行: %v\n", err)
			c.Next()
			return
		}

		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "请求过于频繁，请稍后重试",
				"code":  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
