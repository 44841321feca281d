// Package middleware 包含了 Gin 框架使用的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"know-law-go/internal/model"
	"know-law-go/internal/service"
)

// 上下文键。
const (
	identityKey     = "identity"
	sessionTokenKey = "sessionToken"
)

// ExtractToken 从请求中提取会话令牌：
// 优先读取会话 Cookie，其次读取 Authorization: Bearer 头。
func ExtractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// SessionAuth 返回会话鉴权中间件。
// 未认证的请求直接以 401 拒绝，并提示客户端可以建立访客会话；
// 服务端从不隐式把匿名调用方升级为访客。
func SessionAuth(userService service.UserService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c, cookieName)
		identity, err := userService.ResolveIdentity(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "会话解析失败",
			})
			return
		}
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":          false,
				"message":          "未登录",
				"notAuthenticated": true,
				"allowGuest":       true,
			})
			return
		}

		c.Set(identityKey, *identity)
		c.Set(sessionTokenKey, tokenString)
		c.Next()
	}
}

// IdentityFromContext 读取鉴权中间件写入的调用方身份。
func IdentityFromContext(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}

// TokenFromContext 读取鉴权中间件写入的会话令牌。
func TokenFromContext(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}
