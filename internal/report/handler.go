package report

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SlpAus/usg-voting-backend/internal/election"
	"github.com/gin-gonic/gin"
)

// GetElectionReport 返回一场选举的汇总报告。
// 不带election_id参数时使用metadata指向的当前选举。
// GET /api/report
func GetElectionReport(c *gin.Context) {
	var e *election.Election
	var err error

	if raw := c.Query("election_id"); raw != "" {
		id, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "election_id格式错误"})
			return
		}
		e, err = election.GetByID(uint(id))
	} else {
		e, err = election.Current()
	}
	if err != nil {
		if errors.Is(err, election.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "选举不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取选举: " + err.Error()})
		return
	}

	r, err := GenerateElectionReport(e)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成报告失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}
