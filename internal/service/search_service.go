// Package service 提供了搜索相关的业务逻辑。
package service

import (
	"context"

	"know-law-go/internal/config"
	"know-law-go/internal/model"
	"know-law-go/pkg/es"
	"know-law-go/pkg/log"
)

// SearchService 定义了消息全文检索操作。
// 写入侧（索引/删除）均为尽力而为：检索不可用不影响聊天主流程。
type SearchService interface {
	Search(ctx context.Context, owner model.OwnerRef, query string, size int) ([]model.MessageSearchHit, error)
	IndexMessage(ctx context.Context, owner model.OwnerRef, message *model.Message)
	RemoveMessage(ctx context.Context, messageID uint)
	RemoveConversation(ctx context.Context, conversationID uint)
}

type searchService struct {
	esCfg config.ElasticsearchConfig
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(esCfg config.ElasticsearchConfig) SearchService {
	return &searchService{esCfg: esCfg}
}

// Search 在调用方归属范围内对消息内容做全文检索。
func (s *searchService) Search(ctx context.Context, owner model.OwnerRef, query string, size int) ([]model.MessageSearchHit, error) {
	if size <= 0 {
		size = 10
	}
	return es.SearchMessages(ctx, s.esCfg.IndexName, owner.String(), query, size)
}

// IndexMessage 将消息写入检索索引，失败只记录日志。
func (s *searchService) IndexMessage(ctx context.Context, owner model.OwnerRef, message *model.Message) {
	doc := model.MessageDocument{
		MessageID:      message.ID,
		ConversationID: message.ConversationID,
		OwnerID:        owner.String(),
		Role:           message.Role,
		Content:        message.Content,
		CreatedAt:      message.CreatedAt,
	}
	if err := es.IndexMessage(ctx, s.esCfg.IndexName, doc); err != nil {
		log.Warnf("[SearchService] 索引消息失败, messageID: %d, error: %v", message.ID, err)
	}
}

// RemoveMessage 从检索索引中删除一条消息，失败只记录日志。
func (s *searchService) RemoveMessage(ctx context.Context, messageID uint) {
	if err := es.DeleteMessage(ctx, s.esCfg.IndexName, messageID); err != nil {
		log.Warnf("[SearchService] 删除消息索引失败, messageID: %d, error: %v", messageID, err)
	}
}

// RemoveConversation 删除某会话的全部消息索引，失败只记录日志。
func (s *searchService) RemoveConversation(ctx context.Context, conversationID uint) {
	if err := es.DeleteByConversation(ctx, s.esCfg.IndexName, conversationID); err != nil {
		log.Warnf("[SearchService] 删除会话索引失败, conversationID: %d, error: %v", conversationID, err)
	}
}
