// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"time"

	"gorm.io/gorm"
	"know-law-go/internal/model"
)

// ConversationRepository 接口定义了会话与消息的持久化操作。
// 所有按会话 ID 的查询都带 owner 条件，跨归属者访问表现为记录不存在。
type ConversationRepository interface {
	Create(conversation *model.Conversation) error
	FindByOwner(ownerID string) ([]model.Conversation, error)
	FindByIDAndOwner(conversationID uint, ownerID string) (*model.Conversation, error)
	UpdateTitle(conversationID uint, title string) error
	DeleteCascade(conversationID uint) error

	CreateMessage(message *model.Message) error
	FindMessages(conversationID uint) ([]model.Message, error)
	FindMessage(conversationID, messageID uint) (*model.Message, error)
	UpdateMessageContent(message *model.Message, content string) error
	DeleteMessage(message *model.Message) error
}

// conversationRepository 是 ConversationRepository 接口的 GORM 实现。
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create 在数据库中创建一个新的会话记录。
func (r *conversationRepository) Create(conversation *model.Conversation) error {
	return r.db.Create(conversation).Error
}

// FindByOwner 返回归属者的全部会话，按最近活跃（updated_at 降序）排列。
func (r *conversationRepository) FindByOwner(ownerID string) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// FindByIDAndOwner 按 ID 与归属者查找会话。归属不符与不存在同样返回 ErrRecordNotFound。
func (r *conversationRepository) FindByIDAndOwner(conversationID uint, ownerID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.
		Where("id = ? AND owner_id = ?", conversationID, ownerID).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// UpdateTitle 重命名会话并刷新 updated_at。
func (r *conversationRepository) UpdateTitle(conversationID uint, title string) error {
	return r.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now(),
		}).Error
}

// DeleteCascade 在单个事务中删除会话及其全部消息。
// 外键标签已声明级联，这里再以事务显式删除，保证在忽略外键约束的
// 存储引擎上同样不会留下孤儿消息。
func (r *conversationRepository) DeleteCascade(conversationID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, conversationID).Error
	})
}

// CreateMessage 追加一条消息，并在同一事务内刷新所属会话的 updated_at。
func (r *conversationRepository) CreateMessage(message *model.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return touchConversation(tx, message.ConversationID)
	})
}

// FindMessages 返回会话内全部消息，按创建时间升序、同刻按插入顺序排列。
func (r *conversationRepository) FindMessages(conversationID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// FindMessage 在指定会话内按 ID 查找一条消息。
func (r *conversationRepository) FindMessage(conversationID, messageID uint) (*model.Message, error) {
	var message model.Message
	err := r.db.
		Where("id = ? AND conversation_id = ?", messageID, conversationID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// UpdateMessageContent 更新消息内容，并在同一事务内刷新所属会话的 updated_at。
func (r *conversationRepository) UpdateMessageContent(message *model.Message, content string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(message).
			Updates(map[string]interface{}{
				"content":    content,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		return touchConversation(tx, message.ConversationID)
	})
}

// DeleteMessage 删除消息，并在同一事务内刷新所属会话的 updated_at。
func (r *conversationRepository) DeleteMessage(message *model.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(message).Error; err != nil {
			return err
		}
		return touchConversation(tx, message.ConversationID)
	})
}

// touchConversation 刷新会话的 updated_at，用于“最近活跃”排序。
func touchConversation(tx *gorm.DB, conversationID uint) error {
	return tx.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		UpdateColumn("updated_at", time.Now()).Error
}
