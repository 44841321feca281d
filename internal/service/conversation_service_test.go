package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"know-law-go/internal/model"
)

// stubConversationRepo 是 ConversationRepository 的内存实现。
type stubConversationRepo struct {
	conversations map[uint]*model.Conversation
	messages      map[uint]*model.Message
	nextConvID    uint
	nextMsgID     uint
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{
		conversations: map[uint]*model.Conversation{},
		messages:      map[uint]*model.Message{},
	}
}

func (r *stubConversationRepo) Create(conversation *model.Conversation) error {
	r.nextConvID++
	conversation.ID = r.nextConvID
	c := *conversation
	r.conversations[c.ID] = &c
	return nil
}

func (r *stubConversationRepo) FindByOwner(ownerID string) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubConversationRepo) FindByIDAndOwner(conversationID uint, ownerID string) (*model.Conversation, error) {
	c, ok := r.conversations[conversationID]
	if !ok || c.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *c
	return &out, nil
}

func (r *stubConversationRepo) UpdateTitle(conversationID uint, title string) error {
	if c, ok := r.conversations[conversationID]; ok {
		c.Title = title
	}
	return nil
}

func (r *stubConversationRepo) DeleteCascade(conversationID uint) error {
	delete(r.conversations, conversationID)
	for id, m := range r.messages {
		if m.ConversationID == conversationID {
			delete(r.messages, id)
		}
	}
	return nil
}

func (r *stubConversationRepo) CreateMessage(message *model.Message) error {
	r.nextMsgID++
	message.ID = r.nextMsgID
	m := *message
	r.messages[m.ID] = &m
	return nil
}

func (r *stubConversationRepo) FindMessages(conversationID uint) ([]model.Message, error) {
	var out []model.Message
	// ID 递增分配，按 ID 升序即插入顺序
	for id := uint(1); id <= r.nextMsgID; id++ {
		if m, ok := r.messages[id]; ok && m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubConversationRepo) FindMessage(conversationID, messageID uint) (*model.Message, error) {
	m, ok := r.messages[messageID]
	if !ok || m.ConversationID != conversationID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *m
	return &out, nil
}

func (r *stubConversationRepo) UpdateMessageContent(message *model.Message, content string) error {
	if m, ok := r.messages[message.ID]; ok {
		m.Content = content
	}
	return nil
}

func (r *stubConversationRepo) DeleteMessage(message *model.Message) error {
	delete(r.messages, message.ID)
	return nil
}

// noopSearchService 在单元测试中替代 Elasticsearch。
type noopSearchService struct{}

func (noopSearchService) Search(ctx context.Context, owner model.OwnerRef, query string, size int) ([]model.MessageSearchHit, error) {
	return nil, nil
}
func (noopSearchService) IndexMessage(ctx context.Context, owner model.OwnerRef, message *model.Message) {
}
func (noopSearchService) RemoveMessage(ctx context.Context, messageID uint)           {}
func (noopSearchService) RemoveConversation(ctx context.Context, conversationID uint) {}

func newConversationServiceForTest() (ConversationService, *stubConversationRepo) {
	repo := newStubConversationRepo()
	return NewConversationService(repo, noopSearchService{}), repo
}

func TestConversationCreateDefaultTitle(t *testing.T) {
	s, _ := newConversationServiceForTest()

	conversation, err := s.Create(context.Background(), model.GuestOwner(), "   ")
	require.NoError(t, err)
	assert.Equal(t, DefaultConversationTitle, conversation.Title)
}

func TestConversationRenameRejectsEmptyTitle(t *testing.T) {
	s, _ := newConversationServiceForTest()
	owner := model.RegisteredOwner(1)

	conversation, err := s.Create(context.Background(), owner, "Tenancy questions")
	require.NoError(t, err)

	_, err = s.Rename(context.Background(), owner, conversation.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestConversationCrossOwnerIsNotFound(t *testing.T) {
	s, _ := newConversationServiceForTest()

	conversation, err := s.Create(context.Background(), model.RegisteredOwner(1), "private")
	require.NoError(t, err)

	other := model.RegisteredOwner(2)
	_, _, err = s.Get(context.Background(), other, conversation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Rename(context.Background(), other, conversation.ID, "stolen")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(context.Background(), other, conversation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 访客与注册用户之间同样隔离
	_, _, err = s.Get(context.Background(), model.GuestOwner(), conversation.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConversationEditMessageRules(t *testing.T) {
	s, repo := newConversationServiceForTest()
	owner := model.RegisteredOwner(1)

	conversation, err := s.Create(context.Background(), owner, "chat")
	require.NoError(t, err)

	userMsg := &model.Message{ConversationID: conversation.ID, Role: model.RoleUser, Content: "original"}
	require.NoError(t, repo.CreateMessage(userMsg))
	assistantMsg := &model.Message{ConversationID: conversation.ID, Role: model.RoleAssistant, Content: "reply"}
	require.NoError(t, repo.CreateMessage(assistantMsg))

	// 用户消息可编辑
	edited, err := s.EditMessage(context.Background(), owner, conversation.ID, userMsg.ID, "updated")
	require.NoError(t, err)
	assert.Equal(t, "updated", edited.Content)

	// 空内容拒绝
	_, err = s.EditMessage(context.Background(), owner, conversation.ID, userMsg.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	// 助手消息不可编辑
	_, err = s.EditMessage(context.Background(), owner, conversation.ID, assistantMsg.ID, "tampered")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestConversationDeleteMessageAllowsAnyRole(t *testing.T) {
	s, repo := newConversationServiceForTest()
	owner := model.RegisteredOwner(1)

	conversation, err := s.Create(context.Background(), owner, "chat")
	require.NoError(t, err)

	assistantMsg := &model.Message{ConversationID: conversation.ID, Role: model.RoleAssistant, Content: "reply"}
	require.NoError(t, repo.CreateMessage(assistantMsg))

	// 删除不限制角色：助手消息也可删除
	err = s.DeleteMessage(context.Background(), owner, conversation.ID, assistantMsg.ID)
	require.NoError(t, err)

	_, err = repo.FindMessage(conversation.ID, assistantMsg.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestConversationDeleteCascades(t *testing.T) {
	s, repo := newConversationServiceForTest()
	owner := model.RegisteredOwner(1)

	conversation, err := s.Create(context.Background(), owner, "chat")
	require.NoError(t, err)
	msg := &model.Message{ConversationID: conversation.ID, Role: model.RoleUser, Content: "hello"}
	require.NoError(t, repo.CreateMessage(msg))

	require.NoError(t, s.Delete(context.Background(), owner, conversation.ID))

	list, err := s.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.FindMessage(conversation.ID, msg.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
