package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/usg-voting-backend/api"
	"github.com/SlpAus/usg-voting-backend/internal/broadcast"
	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/SlpAus/usg-voting-backend/internal/platform/config"
	"github.com/SlpAus/usg-voting-backend/internal/platform/database"
	"github.com/SlpAus/usg-voting-backend/internal/platform/health"
	"github.com/SlpAus/usg-voting-backend/internal/platform/shutdown"
	"github.com/SlpAus/usg-voting-backend/internal/platform/startup"
	"github.com/SlpAus/usg-voting-backend/pkg/lifecycle"
	"github.com/SlpAus/usg-voting-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env 是可选的，缺失时使用环境变量和config.yaml
	if err := godotenv.Load(); err != nil {
		fmt.Println("未找到.env文件，使用现有环境变量。")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	token.GenerateSecretKey()
	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)

	// 阻塞式获取初始Run ID，Redis不可用时直接失败
	health.InitializeRunID()

	// 应用首次启动初始化：迁移全部表，预热全部缓存
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 异步启动后台的持续健康检查器
	go health.StartRedisHealthCheck()

	// 可选的Kafka事件外发
	broadcast.InitKafka(cfg.Kafka)

	// 两级生命周期管理器：优雅信号与强制信号
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	// 选举到期巡查器：服务器自己关到点的选举，不等客户端
	watcherHandle, err := gracefulMgr.NewServiceHandle("election-expiry-watcher")
	if err != nil {
		panic(fmt.Sprintf("无法注册到期巡查器: %v", err))
	}
	election.StartExpiryWatcher(watcherHandle)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, cfg)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("服务器启动失败: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
