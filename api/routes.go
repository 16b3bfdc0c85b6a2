package api

import (
	"github.com/SlpAus/usg-voting-backend/internal/candidate"
	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/SlpAus/usg-voting-backend/internal/platform/config"
	"github.com/SlpAus/usg-voting-backend/internal/report"
	"github.com/SlpAus/usg-voting-backend/internal/roster"
	"github.com/SlpAus/usg-voting-backend/internal/tally"
	"github.com/SlpAus/usg-voting-backend/internal/user"
	"github.com/SlpAus/usg-voting-backend/internal/vote"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, cfg *config.Config) {
	api := router.Group("/api")
	{
		// 注册：核对学生名册并激活选民身份
		api.POST("/register", user.EnsureVoterCookieMiddleware(), roster.RegisterVoter)

		// 投票：身份来自cookie，资格由中间件把关，频率按IP限制
		api.POST("/vote",
			user.LoadVoterMiddleware(),
			user.RequireEligibleVoterMiddleware(),
			vote.RateLimitMiddleware(cfg.Vote.RateLimitPerMinute),
			vote.Submit,
		)

		// 选举生命周期 /api/election
		electionRoutes := api.Group("/election")
		{
			electionRoutes.GET("/status", election.GetStatus)
			electionRoutes.POST("", election.Create)
			electionRoutes.POST("/:id/start", election.Start)
			electionRoutes.POST("/:id/pause", election.Pause)
			electionRoutes.POST("/:id/close", election.CloseExpired)
			electionRoutes.DELETE("/:id", election.Delete)
		}

		// 计票 /api/tally
		// /live 必须先于 /:position 注册，否则会被通配段吞掉
		tallyRoutes := api.Group("/tally")
		{
			tallyRoutes.GET("", tally.GetTally)
			tallyRoutes.GET("/live", tally.StreamTally)
			tallyRoutes.GET("/:position", tally.GetPositionTally)
		}

		api.GET("/candidates", candidate.GetCandidates)
		api.GET("/report", report.GetElectionReport)
	}
}
