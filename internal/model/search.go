// Package model 包含了应用的数据模型定义。
package model

import "time"

// MessageDocument 是写入 Elasticsearch 消息索引的文档结构。
type MessageDocument struct {
	MessageID      uint      `json:"message_id"`
	ConversationID uint      `json:"conversation_id"`
	OwnerID        string    `json:"owner_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageSearchHit 是消息检索接口返回给调用方的单条结果。
type MessageSearchHit struct {
	MessageID      uint    `json:"messageId"`
	ConversationID uint    `json:"conversationId"`
	Role           string  `json:"role"`
	Snippet        string  `json:"snippet"`
	Score          float64 `json:"score"`
}
