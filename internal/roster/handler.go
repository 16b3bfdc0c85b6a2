package roster

import (
	"errors"
	"net/http"

	"github.com/SlpAus/usg-voting-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// registerRequestBody 定义了注册申请的JSON结构
type registerRequestBody struct {
	StudentNumber string `json:"student_number" binding:"required"`
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
}

// RegisterVoter 处理选民注册：校验名册并激活当前cookie对应的选民身份。
// POST /api/register
func RegisterVoter(c *gin.Context) {
	voterID := c.GetString(user.VoterIDKey)
	if voterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少选民身份Cookie"})
		return
	}

	var body registerRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	err := Register(voterID, body.StudentNumber, body.FirstName, body.LastName)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotInRoster):
			c.JSON(http.StatusNotFound, gin.H{"error": "名册中找不到匹配的学生", "code": "NOT_IN_ROSTER"})
		case errors.Is(err, ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "该学号已完成注册", "code": "ALREADY_REGISTERED"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "注册成功"})
}
