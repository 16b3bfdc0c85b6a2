package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName   = "voter-id"
	CookieMaxAge = 365 * 24 * 60 * 60
	VoterIDKey   = "voterID"
)

// EnsureVoterCookieMiddleware 确保浏览器中有一个格式正确的voter-id cookie。
// 如果没有或格式不正确，会生成一个新的临时UUID并设置cookie。
func EnsureVoterCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		voterID, err := c.Cookie(CookieName)

		if err != nil || !IsValidUUID(voterID) {
			if err != http.ErrNoCookie {
				fmt.Printf("检测到无效的选民Cookie: %s, err: %v\n", voterID, err)
			}
			provisionalID, err := CreateProvisionalVoter()
			if err != nil {
				fmt.Printf("创建临时选民ID时发生错误: %v\n", err)
			} else {
				c.SetCookie(CookieName, provisionalID, CookieMaxAge, "/", "", false, true)
				c.Set(VoterIDKey, provisionalID)
			}
		} else {
			c.Set(VoterIDKey, voterID)
		}

		c.Next()
	}
}

// LoadVoterMiddleware 读取cookie并将其值放入Gin上下文中。
// 身份来自会话cookie，绝不接受请求体里自报的选民身份。
func LoadVoterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		voterID, _ := c.Cookie(CookieName)
		c.Set(VoterIDKey, voterID)
		c.Next()
	}
}

// RequireEligibleVoterMiddleware 拦截不具备投票资格的请求：
// 没有名册注册记录或资料不完整的选民到不了投票入口。
func RequireEligibleVoterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		voterID := c.GetString(VoterIDKey)
		if voterID == "" || !IsValidUUID(voterID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少选民身份，请先完成注册"})
			return
		}

		eligible, err := IsVoterEligible(voterID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法确认选民资格: " + err.Error()})
			return
		}
		if !eligible {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "选民资料不完整，无法投票"})
			return
		}

		c.Next()
	}
}
