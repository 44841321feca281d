// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"know-law-go/internal/model"
	"know-law-go/internal/repository"
)

// DefaultConversationTitle 是未指定标题时的默认会话标题。
const DefaultConversationTitle = "New Chat"

// ConversationService 定义了会话与消息的业务操作。
// 每个操作都先按调用方归属校验会话；跨归属者访问一律返回 ErrNotFound。
type ConversationService interface {
	Create(ctx context.Context, owner model.OwnerRef, title string) (*model.Conversation, error)
	List(ctx context.Context, owner model.OwnerRef) ([]model.Conversation, error)
	Get(ctx context.Context, owner model.OwnerRef, conversationID uint) (*model.Conversation, []model.Message, error)
	Rename(ctx context.Context, owner model.OwnerRef, conversationID uint, newTitle string) (*model.Conversation, error)
	Delete(ctx context.Context, owner model.OwnerRef, conversationID uint) error
	EditMessage(ctx context.Context, owner model.OwnerRef, conversationID, messageID uint, newContent string) (*model.Message, error)
	DeleteMessage(ctx context.Context, owner model.OwnerRef, conversationID, messageID uint) error
}

type conversationService struct {
	repo          repository.ConversationRepository
	searchService SearchService
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(repo repository.ConversationRepository, searchService SearchService) ConversationService {
	return &conversationService{repo: repo, searchService: searchService}
}

// Create 为归属者创建一个新会话。标题为空时使用默认标题。
func (s *conversationService) Create(ctx context.Context, owner model.OwnerRef, title string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultConversationTitle
	}
	conversation := &model.Conversation{
		OwnerID: owner.String(),
		Title:   title,
	}
	if err := s.repo.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// List 返回归属者的全部会话，最近活跃的排在最前。
func (s *conversationService) List(ctx context.Context, owner model.OwnerRef) ([]model.Conversation, error) {
	return s.repo.FindByOwner(owner.String())
}

// Get 返回会话及其全部消息，消息按创建时间升序排列。
func (s *conversationService) Get(ctx context.Context, owner model.OwnerRef, conversationID uint) (*model.Conversation, []model.Message, error) {
	conversation, err := s.findOwned(owner, conversationID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.repo.FindMessages(conversationID)
	if err != nil {
		return nil, nil, err
	}
	return conversation, messages, nil
}

// Rename 重命名会话。标题去除空白后不能为空。
func (s *conversationService) Rename(ctx context.Context, owner model.OwnerRef, conversationID uint, newTitle string) (*model.Conversation, error) {
	conversation, err := s.findOwned(owner, conversationID)
	if err != nil {
		return nil, err
	}
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return nil, ErrEmptyTitle
	}
	if err := s.repo.UpdateTitle(conversationID, newTitle); err != nil {
		return nil, err
	}
	conversation.Title = newTitle
	return conversation, nil
}

// Delete 删除会话并级联删除其全部消息，两者在同一事务内完成。
func (s *conversationService) Delete(ctx context.Context, owner model.OwnerRef, conversationID uint) error {
	if _, err := s.findOwned(owner, conversationID); err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(conversationID); err != nil {
		return err
	}
	// 检索索引同步删除，失败只记录
	s.searchService.RemoveConversation(ctx, conversationID)
	return nil
}

// EditMessage 编辑一条消息。只有 user 角色的消息可编辑；
// assistant 消息写入后不可变。
func (s *conversationService) EditMessage(ctx context.Context, owner model.OwnerRef, conversationID, messageID uint, newContent string) (*model.Message, error) {
	if _, err := s.findOwned(owner, conversationID); err != nil {
		return nil, err
	}
	message, err := s.repo.FindMessage(conversationID, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if message.Role != model.RoleUser {
		return nil, ErrNotEditable
	}
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return nil, ErrEmptyContent
	}
	if err := s.repo.UpdateMessageContent(message, newContent); err != nil {
		return nil, err
	}
	message.Content = newContent
	s.searchService.IndexMessage(ctx, owner, message)
	return message, nil
}

// DeleteMessage 删除一条消息。与编辑不同，删除不限制角色，
// user 与 assistant 消息均可删除。
func (s *conversationService) DeleteMessage(ctx context.Context, owner model.OwnerRef, conversationID, messageID uint) error {
	if _, err := s.findOwned(owner, conversationID); err != nil {
		return err
	}
	message, err := s.repo.FindMessage(conversationID, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.repo.DeleteMessage(message); err != nil {
		return err
	}
	s.searchService.RemoveMessage(ctx, messageID)
	return nil
}

// findOwned 按归属者查找会话，归属不符与不存在统一映射为 ErrNotFound。
func (s *conversationService) findOwned(owner model.OwnerRef, conversationID uint) (*model.Conversation, error) {
	conversation, err := s.repo.FindByIDAndOwner(conversationID, owner.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return conversation, nil
}
