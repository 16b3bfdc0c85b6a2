package database

import (
	"context"
	"fmt"

	"github.com/SlpAus/usg-voting-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是全局的Redis客户端实例。
// Redis中只存放派生数据（计票缓存、合格选民集合、限流计数），
// 任何时候都可以从SQL账本整体重建。
var RDB *redis.Client

// Ctx 是用于Redis操作的全局上下文
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	_, err := RDB.Ping(Ctx).Result()
	if err != nil {
		panic("无法连接到Redis: " + err.Error())
	}

	fmt.Println("Redis 连接成功！")
}
