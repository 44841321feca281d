// Package handler 包含了所有 Gin 的 HTTP 请求处理函数。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"know-law-go/internal/config"
	"know-law-go/internal/middleware"
	"know-law-go/internal/model"
	"know-law-go/internal/service"
)

// UserHandler 负责处理身份相关的 HTTP 请求。
type UserHandler struct {
	userService service.UserService
	sessionCfg  config.SessionConfig
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService, sessionCfg config.SessionConfig) *UserHandler {
	return &UserHandler{userService: userService, sessionCfg: sessionCfg}
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register 处理用户注册请求，成功后直接建立会话。
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	user, sessionToken, err := h.userService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sessionToken)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ownerId": model.RegisteredOwner(user.ID).String(),
		"name":    user.Name,
		"email":   user.Email,
	})
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	user, sessionToken, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sessionToken)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ownerId": model.RegisteredOwner(user.ID).String(),
		"name":    user.Name,
		"email":   user.Email,
		"isGuest": false,
	})
}

// Session 返回当前会话的身份。此路由不经过鉴权中间件：
// 匿名调用方收到 200 与 notAuthenticated 标记，而非 401。
func (h *UserHandler) Session(c *gin.Context) {
	tokenString := middleware.ExtractToken(c, h.sessionCfg.CookieName)
	identity, err := h.userService.ResolveIdentity(c.Request.Context(), tokenString)
	if err != nil {
		respondError(c, err)
		return
	}
	if identity == nil {
		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"notAuthenticated": true,
			"allowGuest":       true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ownerId": identity.Owner.String(),
		"name":    identity.DisplayName,
		"isGuest": identity.Owner.IsGuest(),
	})
}

// Guest 显式建立一个访客会话。
func (h *UserHandler) Guest(c *gin.Context) {
	identity, sessionToken, err := h.userService.CreateGuest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sessionToken)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ownerId": identity.Owner.String(),
		"name":    identity.DisplayName,
		"isGuest": true,
	})
}

// Logout 销毁当前会话并清除会话 Cookie。
func (h *UserHandler) Logout(c *gin.Context) {
	tokenString := middleware.ExtractToken(c, h.sessionCfg.CookieName)
	if tokenString != "" {
		if err := h.userService.Logout(c.Request.Context(), tokenString); err != nil {
			respondError(c, err)
			return
		}
	}
	c.SetCookie(h.sessionCfg.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// setSessionCookie 写入会话 Cookie，有效期与令牌一致。
func (h *UserHandler) setSessionCookie(c *gin.Context, sessionToken string) {
	maxAge := h.sessionCfg.ExpireHours * 3600
	c.SetCookie(h.sessionCfg.CookieName, sessionToken, maxAge, "/", "", false, true)
}
