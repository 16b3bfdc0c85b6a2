package vote

import (
	"errors"
	"net/http"

	"github.com/SlpAus/usg-voting-backend/internal/ballot"
	"github.com/SlpAus/usg-voting-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Submit 处理选民提交的选票。
// 选民身份来自会话cookie，由前置的中间件放入上下文；请求体只携带选票。
// POST /api/vote
func Submit(c *gin.Context) {
	voterID := c.GetString(user.VoterIDKey)
	if voterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少选民身份"})
		return
	}

	var body ballot.Ballot
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求格式错误: " + err.Error(),
			"code":  ballot.CodeMalformedBallot,
		})
		return
	}

	receipt, err := SubmitBallot(voterID, body)
	if err != nil {
		var ve *ballot.ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": ve.Reason,
				"code":  ve.Code,
				"field": ve.Field,
			})
		case errors.Is(err, ErrElectionNotOpen):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "选举当前不接受选票",
				"code":  "ELECTION_NOT_OPEN",
			})
		case errors.Is(err, ErrAlreadyVoted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "您已经投过票",
				"code":  "ALREADY_VOTED",
			})
		case errors.Is(err, ErrTransactionFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     "系统繁忙，选票未被记录，请重试",
				"code":      "TRANSACTION_FAILURE",
				"retryable": true,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "处理选票失败: " + err.Error()})
		}
		return
	}

	// 成功只确认一次，回执与实际落库状态严格一致
	c.JSON(http.StatusOK, gin.H{"message": "投票成功", "receipt": receipt})
}
