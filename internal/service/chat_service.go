// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"gorm.io/gorm"
	"know-law-go/internal/model"
	"know-law-go/internal/repository"
	"know-law-go/pkg/llm"
	"know-law-go/pkg/log"
)

// titleMaxRunes 是从首条消息派生会话标题时截取的最大字符数。
const titleMaxRunes = 50

// ChatTurnResult 是一轮聊天的结果：应答文本与相关记录的 ID。
type ChatTurnResult struct {
	ConversationID     uint
	UserMessageID      uint
	AssistantMessageID uint
	Response           string
}

// ChatService 编排一轮完整的聊天：
// 解析或创建会话 → 校验并暂存附件 → 持久化用户消息 →
// 生成应答 → 持久化助手消息 → 清理附件。
type ChatService interface {
	HandleTurn(ctx context.Context, owner model.OwnerRef, conversationID uint, message string, files []*multipart.FileHeader) (*ChatTurnResult, error)
	StreamTurn(ctx context.Context, owner model.OwnerRef, conversationID uint, message string, conn *websocket.Conn) error
}

type chatService struct {
	repo          repository.ConversationRepository
	uploadService UploadService
	searchService SearchService
	strategy      ResponseStrategy
	llmClient     llm.Client // 仅流式路径使用；静态模式下为 nil
	static        *StaticStrategy
	historyWindow int
	streamTimeout time.Duration
}

// NewChatService 创建一个新的 ChatService 实例。
// strategy 由启动配置决定：有外部 API 凭证时为委托策略（内部回落到静态），
// 否则为纯静态策略，此时 llmClient 传 nil。
func NewChatService(
	repo repository.ConversationRepository,
	uploadService UploadService,
	searchService SearchService,
	strategy ResponseStrategy,
	llmClient llm.Client,
	historyWindow int,
	streamTimeout time.Duration,
) ChatService {
	return &chatService{
		repo:          repo,
		uploadService: uploadService,
		searchService: searchService,
		strategy:      strategy,
		llmClient:     llmClient,
		static:        NewStaticStrategy(),
		historyWindow: historyWindow,
		streamTimeout: streamTimeout,
	}
}

// HandleTurn 处理一轮阻塞式聊天请求。
func (s *chatService) HandleTurn(ctx context.Context, owner model.OwnerRef, conversationID uint, message string, files []*multipart.FileHeader) (*ChatTurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" && len(files) == 0 {
		return nil, fmt.Errorf("%w: 消息与附件不能同时为空", ErrValidation)
	}

	// 1. 附件校验先于一切持久化
	if err := s.uploadService.Validate(files); err != nil {
		return nil, err
	}

	// 2. 解析或创建会话
	conversation, err := s.resolveConversation(owner, conversationID, message)
	if err != nil {
		return nil, err
	}

	// 3. 暂存附件并捕获元数据；本轮结束后删除内容
	fileInfos, objectNames, err := s.uploadService.Store(ctx, files)
	if err != nil {
		return nil, err
	}
	defer s.uploadService.Discard(objectNames)

	// 4. 加载尾部历史（在写入本轮消息之前）
	allMessages, err := s.repo.FindMessages(conversation.ID)
	if err != nil {
		return nil, err
	}
	history := historyFromMessages(allMessages, s.historyWindow)

	// 5. 持久化用户消息
	userMessage, err := s.persistUserMessage(conversation.ID, message, fileInfos)
	if err != nil {
		return nil, err
	}
	s.searchService.IndexMessage(ctx, owner, userMessage)

	// 6. 生成应答。委托策略内部已回落到静态策略，这里不会失败成空应答
	answer, err := s.strategy.Generate(ctx, ReplyRequest{
		Message: message,
		Files:   fileInfos,
		History: history,
	})
	if err != nil {
		return nil, err
	}

	// 7. 持久化助手消息
	assistantMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleAssistant,
		Content:        answer,
	}
	if err := s.repo.CreateMessage(assistantMessage); err != nil {
		return nil, err
	}
	s.searchService.IndexMessage(ctx, owner, assistantMessage)

	return &ChatTurnResult{
		ConversationID:     conversation.ID,
		UserMessageID:      userMessage.ID,
		AssistantMessageID: assistantMessage.ID,
		Response:           answer,
	}, nil
}

// StreamTurn 处理一轮 WebSocket 流式聊天（不支持附件）。
// 应答以 {"chunk":...} 帧下发，结束后发送 completion 帧；
// 持久化语义与阻塞路径一致。
func (s *chatService) StreamTurn(ctx context.Context, owner model.OwnerRef, conversationID uint, message string, conn *websocket.Conn) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: 消息不能为空", ErrValidation)
	}

	conversation, err := s.resolveConversation(owner, conversationID, message)
	if err != nil {
		return err
	}

	allMessages, err := s.repo.FindMessages(conversation.ID)
	if err != nil {
		return err
	}
	history := historyFromMessages(allMessages, s.historyWindow)

	userMessage, err := s.persistUserMessage(conversation.ID, message, nil)
	if err != nil {
		return err
	}
	s.searchService.IndexMessage(ctx, owner, userMessage)

	answer := s.streamAnswer(ctx, conn, ReplyRequest{Message: message, History: history})

	assistantMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleAssistant,
		Content:        answer,
	}
	if err := s.repo.CreateMessage(assistantMessage); err != nil {
		log.Errorf("[ChatService] 保存流式应答失败: %v", err)
		return err
	}
	s.searchService.IndexMessage(ctx, owner, assistantMessage)

	sendCompletion(conn, conversation.ID)
	return nil
}

// streamAnswer 尝试流式生成；外部能力不可用时回落到静态策略，
// 将整段应答作为单个分块下发。
func (s *chatService) streamAnswer(ctx context.Context, conn *websocket.Conn, req ReplyRequest) string {
	if s.llmClient != nil {
		callCtx, cancel := context.WithTimeout(ctx, s.streamTimeout)
		defer cancel()

		builder := &strings.Builder{}
		interceptor := &wsWriterInterceptor{conn: conn, writer: builder}

		messages := make([]llm.Message, 0, len(req.History)+2)
		messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
		for _, m := range req.History {
			messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
		}
		messages = append(messages, llm.Message{Role: "user", Content: req.Message})

		err := s.llmClient.StreamChatMessages(callCtx, messages, nil, interceptor)
		if err == nil && strings.TrimSpace(builder.String()) != "" {
			return strings.TrimSpace(builder.String())
		}
		log.Warnf("[ChatService] 流式生成失败，回落到静态策略: %v", err)
	}

	answer, _ := s.static.Generate(ctx, req)
	payload, _ := json.Marshal(map[string]string{"chunk": answer})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Warnf("[ChatService] 下发静态应答分块失败: %v", err)
	}
	return answer
}

// resolveConversation 按 ID 查找归属会话；ID 为 0 时创建新会话，
// 标题取首条消息的前 50 个字符，消息为空则使用默认标题。
func (s *chatService) resolveConversation(owner model.OwnerRef, conversationID uint, message string) (*model.Conversation, error) {
	if conversationID != 0 {
		conversation, err := s.repo.FindByIDAndOwner(conversationID, owner.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return conversation, nil
	}

	conversation := &model.Conversation{
		OwnerID: owner.String(),
		Title:   deriveTitle(message),
	}
	if err := s.repo.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// persistUserMessage 持久化用户消息；附件元数据序列化为 JSON 存入。
func (s *chatService) persistUserMessage(conversationID uint, message string, fileInfos []model.FileInfo) (*model.Message, error) {
	fileInfoJSON := ""
	if len(fileInfos) > 0 {
		b, err := json.Marshal(fileInfos)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal file metadata: %w", err)
		}
		fileInfoJSON = string(b)
	}

	userMessage := &model.Message{
		ConversationID: conversationID,
		Role:           model.RoleUser,
		Content:        message,
		FileInfoJSON:   fileInfoJSON,
	}
	if err := s.repo.CreateMessage(userMessage); err != nil {
		return nil, err
	}
	return userMessage, nil
}

// deriveTitle 从首条消息派生会话标题：取前 50 个字符（按 rune 截断）。
func deriveTitle(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return DefaultConversationTitle
	}
	runes := []rune(message)
	if len(runes) > titleMaxRunes {
		return string(runes[:titleMaxRunes])
	}
	return message
}

// wsWriterInterceptor 是对 websocket.Conn 的封装，
// 在下发分块的同时捕获完整应答用于持久化。
type wsWriterInterceptor struct {
	conn   *websocket.Conn
	writer *strings.Builder
}

// WriteMessage 满足 llm.MessageWriter 接口，将分块包装成 {"chunk":"..."}。
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	w.writer.Write(data)
	payload, _ := json.Marshal(map[string]string{"chunk": string(data)})
	return w.conn.WriteMessage(messageType, payload)
}

// sendCompletion 发送完成通知帧。
func sendCompletion(conn *websocket.Conn, conversationID uint) {
	notif := map[string]interface{}{
		"type":           "completion",
		"status":         "finished",
		"conversationId": conversationID,
		"timestamp":      time.Now().UnixMilli(),
	}
	b, _ := json.Marshal(notif)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}
