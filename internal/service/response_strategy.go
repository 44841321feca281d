// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"know-law-go/internal/model"
	"know-law-go/pkg/llm"
	"know-law-go/pkg/log"
)

// systemPrompt 是委托策略使用的固定系统指令。
const systemPrompt = "You are the Know Law assistant, a bilingual (Arabic/English) legal information helper. " +
	"Answer in the same language as the user's message. Give clear, practical legal information, " +
	"remind the user that this is general information and not formal legal advice, and suggest booking " +
	"a consultation with a lawyer for case-specific questions. If the user attached files, acknowledge them " +
	"by name and ask a clarifying follow-up question instead of analyzing their contents."

// DelegatedStrategy 将应答生成委托给外部补全能力，
// 任何失败（认证、限流、网络、空补全、超时）都透明回落到静态策略：
// 聊天必须始终给出某个应答。
type DelegatedStrategy struct {
	llmClient    llm.Client
	fallback     ResponseStrategy
	timeout      time.Duration
	historyLimit int
}

// NewDelegatedStrategy 创建一个委托应答策略，fallback 通常为静态策略。
func NewDelegatedStrategy(llmClient llm.Client, fallback ResponseStrategy, timeout time.Duration, historyLimit int) *DelegatedStrategy {
	return &DelegatedStrategy{
		llmClient:    llmClient,
		fallback:     fallback,
		timeout:      timeout,
		historyLimit: historyLimit,
	}
}

// Generate 调用外部补全能力生成应答，失败时回落到静态策略。
func (s *DelegatedStrategy) Generate(ctx context.Context, req ReplyRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := s.composeMessages(req)
	answer, err := s.llmClient.Complete(callCtx, messages, nil)
	if err != nil {
		log.Warnf("[DelegatedStrategy] 外部补全失败，回落到静态策略: %v", err)
		return s.fallback.Generate(ctx, req)
	}
	return strings.TrimSpace(answer), nil
}

// composeMessages 构造发送给外部模型的消息序列：
// 固定系统指令 + 最多 historyLimit 条尾部历史 + 当前轮。
func (s *DelegatedStrategy) composeMessages(req ReplyRequest) []llm.Message {
	history := req.History
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: s.currentTurnContent(req)})
	return messages
}

// currentTurnContent 构造当前轮的用户内容。
// 附件只附元数据（名称/大小/类型），内容从不上送。
func (s *DelegatedStrategy) currentTurnContent(req ReplyRequest) string {
	if len(req.Files) == 0 {
		return req.Message
	}
	var b strings.Builder
	b.WriteString(req.Message)
	b.WriteString("\n\n[Attached files (metadata only): ")
	for i, f := range req.Files {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (%d bytes, %s)", f.Name, f.Size, f.Mimetype)
	}
	b.WriteString("]")
	return b.String()
}

// historyFromMessages 将持久化消息裁剪为应答生成用的尾部历史。
func historyFromMessages(messages []model.Message, window int) []model.Message {
	if len(messages) > window {
		return messages[len(messages)-window:]
	}
	return messages
}
