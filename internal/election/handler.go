package election

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SlpAus/usg-voting-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// statusResponse 是 GET /election/status 的响应结构
type statusResponse struct {
	Election   *Election `json:"election"`
	ServerTime time.Time `json:"server_time"`
	// CloseToken 仅在设置了截止时间时签发，客户端倒计时到期后
	// 带着它调用close接口
	CloseToken *closeToken `json:"close_token,omitempty"`
}

type closeToken struct {
	Payload   token.ClosePayload `json:"payload"`
	Signature string             `json:"signature"`
}

// closeRequestBody 是 POST /election/:id/close 的请求体
type closeRequestBody struct {
	Payload   token.ClosePayload `json:"payload" binding:"required"`
	Signature string             `json:"signature" binding:"required"`
}

// GetStatus 返回当前选举及其状态，供看板轮询和倒计时初始化。
func GetStatus(c *gin.Context) {
	e, err := Current()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"election": nil, "server_time": time.Now()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法读取选举状态: " + err.Error()})
		return
	}

	resp := statusResponse{Election: e, ServerTime: time.Now()}
	if e.EndTime != nil {
		payload := token.ClosePayload{ElectionID: e.ID, IssuedAt: time.Now().Unix()}
		signature, err := token.GenerateCloseSignature(payload)
		if err == nil {
			resp.CloseToken = &closeToken{Payload: payload, Signature: signature}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// CloseExpired 处理客户端倒计时触发的关闭请求。
// 请求必须携带由状态接口签发的签名，且服务器会自行校验选举ID与截止时间，
// 不信任客户端报告的"已到期"。
func CloseExpired(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "选举ID无效"})
		return
	}
	id := uint(id64)

	var body closeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if body.Payload.ElectionID != id || !token.ValidateCloseSignature(body.Payload, body.Signature) {
		c.JSON(http.StatusForbidden, gin.H{"error": "关闭请求签名无效"})
		return
	}

	e, err := CloseIfExpired(id, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "选举不存在"})
		case errors.Is(err, ErrNotExpired):
			c.JSON(http.StatusConflict, gin.H{"error": "选举尚未到达截止时间"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "关闭选举失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "选举已关闭", "election": e})
}

// createRequestBody 是 POST /election 的请求体
type createRequestBody struct {
	Name      string     `json:"name" binding:"required"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// Create 处理管理端的建立选举请求。新选举处于Created状态，不接受选票。
func Create(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	e, err := CreateElection(body.Name, body.StartTime, body.EndTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建选举失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "选举已创建", "election": e})
}

// Delete 处理管理端的删除请求，级联清除该选举的全部数据。
func Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "选举ID无效"})
		return
	}

	if err := DeleteElection(uint(id64)); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "选举不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除选举失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "选举已删除"})
}

// Pause 处理管理端的暂停请求。幂等。
func Pause(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "选举ID无效"})
		return
	}

	e, err := PauseElection(uint(id64))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "选举不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "暂停选举失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "选举已暂停", "election": e})
}

// Start 处理管理端的开启/重新开启请求。
func Start(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "选举ID无效"})
		return
	}

	e, err := StartElection(uint(id64))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "选举不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "开启选举失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "选举已开启", "election": e})
}
