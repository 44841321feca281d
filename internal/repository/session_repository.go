// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionRecord 是一条服务端会话记录。
// 会话 cookie 中的令牌在此映射到调用方身份；注销即删除记录。
type SessionRecord struct {
	OwnerID     string `json:"ownerId"`
	DisplayName string `json:"displayName"`
	IsGuest     bool   `json:"isGuest"`
}

// SessionRepository 定义了会话记录的操作接口。
type SessionRepository interface {
	Save(ctx context.Context, token string, record SessionRecord, ttl time.Duration) error
	Get(ctx context.Context, token string) (*SessionRecord, error)
	Delete(ctx context.Context, token string) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(redisClient *redis.Client) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient}
}

// Save 在 Redis 中写入会话记录，过期时间与令牌有效期对齐。
func (r *redisSessionRepository) Save(ctx context.Context, token string, record SessionRecord, ttl time.Duration) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}
	key := sessionKey(token)
	if err := r.redisClient.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session record: %w", err)
	}
	return nil
}

// Get 从 Redis 读取会话记录。记录不存在时返回 (nil, nil)。
func (r *redisSessionRepository) Get(ctx context.Context, token string) (*SessionRecord, error) {
	jsonData, err := r.redisClient.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session record: %w", err)
	}
	var record SessionRecord
	if err := json.Unmarshal([]byte(jsonData), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}
	return &record, nil
}

// Delete 删除会话记录，使对应令牌失效。
func (r *redisSessionRepository) Delete(ctx context.Context, token string) error {
	return r.redisClient.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
