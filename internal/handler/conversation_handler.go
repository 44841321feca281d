// Package handler 包含了所有 Gin 的 HTTP 请求处理函数。
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"know-law-go/internal/middleware"
	"know-law-go/internal/service"
)

// ConversationHandler 负责处理会话与消息相关的 HTTP 请求。
type ConversationHandler struct {
	conversationService service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler 实例。
func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List 返回调用方的全部会话，最近活跃的排在最前。
func (h *ConversationHandler) List(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	conversations, err := h.conversationService.List(c.Request.Context(), identity.Owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversations": conversations})
}

type createConversationRequest struct {
	Title string `json:"title"`
}

// Create 创建一个新会话，标题可选。
func (h *ConversationHandler) Create(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	var req createConversationRequest
	// 请求体可以为空
	_ = c.ShouldBindJSON(&req)

	conversation, err := h.conversationService.Create(c.Request.Context(), identity.Owner, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversation": conversation})
}

// Get 返回会话与其全部消息。
func (h *ConversationHandler) Get(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	conversationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	conversation, messages, err := h.conversationService.Get(c.Request.Context(), identity.Owner, conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"conversation": conversation,
		"messages":     messages,
	})
}

type renameConversationRequest struct {
	Title string `json:"title"`
}

// Rename 重命名会话。
func (h *ConversationHandler) Rename(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	conversationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req renameConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	conversation, err := h.conversationService.Rename(c.Request.Context(), identity.Owner, conversationID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conversation": conversation})
}

// Delete 删除会话及其全部消息。
func (h *ConversationHandler) Delete(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	conversationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.conversationService.Delete(c.Request.Context(), identity.Owner, conversationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type editMessageRequest struct {
	Content string `json:"content"`
}

// EditMessage 编辑会话中的一条用户消息。
func (h *ConversationHandler) EditMessage(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	conversationID, ok := parseID(c, "id")
	if !ok {
		return
	}
	messageID, ok := parseID(c, "msgId")
	if !ok {
		return
	}

	var req editMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	message, err := h.conversationService.EditMessage(c.Request.Context(), identity.Owner, conversationID, messageID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// DeleteMessage 删除会话中的一条消息。
func (h *ConversationHandler) DeleteMessage(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	conversationID, ok := parseID(c, "id")
	if !ok {
		return
	}
	messageID, ok := parseID(c, "msgId")
	if !ok {
		return
	}

	if err := h.conversationService.DeleteMessage(c.Request.Context(), identity.Owner, conversationID, messageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseID 解析路径参数中的数字 ID。非法 ID 与不存在同样返回 404。
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": service.ErrNotFound.Error()})
		return 0, false
	}
	return uint(id), true
}
