package tally

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/SlpAus/usg-voting-backend/internal/broadcast"
	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/SlpAus/usg-voting-backend/internal/position"
	"github.com/gin-gonic/gin"
)

// resolveElection 解析请求目标选举：显式的election_id参数优先，
// 否则使用metadata指向的当前选举。
func resolveElection(c *gin.Context) (*election.Election, bool) {
	if param := c.Query("election_id"); param != "" {
		id64, err := strconv.ParseUint(param, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "election_id 参数无效"})
			return nil, false
		}
		e, err := election.GetByID(uint(id64))
		if err != nil {
			if errors.Is(err, election.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "选举不存在"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return nil, false
		}
		return e, true
	}

	e, err := election.Current()
	if err != nil {
		if errors.Is(err, election.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "当前没有选举"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return e, true
}

// positionResults 读取一个职位的排名，缓存优先，账本兜底。
func positionResults(electionID uint, pos position.ID) ([]CandidateCount, error) {
	if results, ok := CachedResultsForPosition(electionID, pos); ok {
		return results, nil
	}
	return ResultsForPosition(electionID, pos)
}

// GetTally 返回一场选举所有职位的实时票数。
// GET /api/tally?election_id=1
func GetTally(c *gin.Context) {
	e, ok := resolveElection(c)
	if !ok {
		return
	}

	positions := make(map[string][]CandidateCount, len(position.All()))
	for _, pos := range position.All() {
		results, err := positionResults(e.ID, pos)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "读取票数失败: " + err.Error()})
			return
		}
		positions[string(pos)] = results
	}

	c.JSON(http.StatusOK, gin.H{
		"election_id": e.ID,
		"status":      e.Status,
		"positions":   positions,
	})
}

// GetPositionTally 返回单个职位的实时票数。
// GET /api/tally/senator?election_id=1
func GetPositionTally(c *gin.Context) {
	pos := position.ID(c.Param("position"))
	if !position.IsValid(pos) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的职位: " + c.Param("position")})
		return
	}

	e, ok := resolveElection(c)
	if !ok {
		return
	}

	results, err := positionResults(e.ID, pos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取票数失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"election_id": e.ID,
		"position":    pos,
		"results":     results,
	})
}

// StreamTally 以SSE长连接推送计票和状态事件，供实时看板订阅。
// 推送是尽力而为的，看板仍应周期性调用 /api/tally 校准。
// GET /api/tally/live
func StreamTally(c *gin.Context) {
	pubsub := broadcast.Subscribe()
	if pubsub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "实时推送暂不可用，请轮询 /api/tally"})
		return
	}
	defer pubsub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	msgChan := pubsub.Channel()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				return false
			}
			switch msg.Channel {
			case broadcast.TallyChannel:
				c.SSEvent("tally", msg.Payload)
			case broadcast.StatusChannel:
				c.SSEvent("status", msg.Payload)
			}
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
