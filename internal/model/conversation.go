// Package model 包含了应用的数据模型定义。
package model

import "time"

// 消息角色常量。只有 user 角色的消息可以被编辑。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation 对应于数据库中的 'conversations' 表。
// OwnerID 存储注册用户的数字 ID 或字面量 "guest"。
type Conversation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   string    `gorm:"type:varchar(32);index;not null" json:"ownerId"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Conversation) TableName() string {
	return "conversations"
}

// Message 对应于数据库中的 'messages' 表。
// 会话内排序按 created_at 升序，created_at 相同时按插入顺序（主键）决胜。
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversationId"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	FileInfoJSON   string    `gorm:"type:text" json:"-"` // 附件元数据的 JSON 序列化，可为空
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Message) TableName() string {
	return "messages"
}

// FileInfo 描述一个附件的元数据。只保存元数据，不保存文件内容。
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Mimetype string `json:"mimetype"`
}
