// Package handler 包含了所有 Gin 的 HTTP 请求处理函数。
package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"know-law-go/internal/middleware"
	"know-law-go/internal/service"
	"know-law-go/pkg/log"
)

// upgrader 将 HTTP 连接升级为 WebSocket 连接。
// 跨域控制由 Cors 中间件负责，这里不再重复校验 Origin。
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChatHandler 负责处理聊天相关的 HTTP 与 WebSocket 请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat 处理一轮阻塞式聊天请求。
// multipart 表单字段：message、conversationId（可选）、file0..fileN（可选）。
func (h *ChatHandler) Chat(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	message := c.PostForm("message")
	conversationID := uint(0)
	if raw := c.PostForm("conversationId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的会话 ID"})
			return
		}
		conversationID = uint(id)
	}

	files := collectFiles(c)

	result, err := h.chatService.HandleTurn(c.Request.Context(), identity.Owner, conversationID, message, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"response":           result.Response,
		"conversationId":     result.ConversationID,
		"userMessageId":      result.UserMessageID,
		"assistantMessageId": result.AssistantMessageID,
	})
}

// wsChatRequest 是 WebSocket 聊天的单轮请求帧。
type wsChatRequest struct {
	Message        string `json:"message"`
	ConversationID uint   `json:"conversationId"`
}

// ChatStream 处理 WebSocket 流式聊天。每个连接串行处理多轮请求；
// 应答分块以 {"chunk":...} 帧下发，结束后发送 completion 帧。
func (h *ChatHandler) ChatStream(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("[ChatHandler] WebSocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[ChatHandler] WebSocket 连接异常关闭: %v", err)
			}
			return
		}

		var req wsChatRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			writeWSError(conn, "无效的请求帧")
			continue
		}

		if err := h.chatService.StreamTurn(c.Request.Context(), identity.Owner, req.ConversationID, req.Message, conn); err != nil {
			writeWSError(conn, err.Error())
		}
	}
}

// collectFiles 按 file0..fileN 的顺序收集上传的附件。
func collectFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	var files []*multipart.FileHeader
	for i := 0; ; i++ {
		fhs, ok := form.File["file"+strconv.Itoa(i)]
		if !ok || len(fhs) == 0 {
			break
		}
		files = append(files, fhs...)
	}
	return files
}

// writeWSError 下发一个错误帧。
func writeWSError(conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(gin.H{"type": "error", "success": false, "message": message})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Warnf("[ChatHandler] 下发错误帧失败: %v", err)
	}
}
