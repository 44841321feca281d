// Package token 提供了会话令牌（JWT）的签发与验证功能。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionManager 负责会话令牌的签发与验证。
// 令牌本身携带身份信息，服务端另在 Redis 中保存会话记录，
// 注销即删除记录，令牌随之失效。
type SessionManager struct {
	secretKey  []byte        // 用于签名和验证令牌的密钥
	sessionDur time.Duration // 会话有效期
}

// SessionClaims 定义了会话令牌中携带的身份数据。
// OwnerID 为注册用户的数字 ID 字符串或字面量 "guest"。
type SessionClaims struct {
	OwnerID     string `json:"ownerId"`
	DisplayName string `json:"displayName"`
	IsGuest     bool   `json:"isGuest"`
	jwt.RegisteredClaims
}

// NewSessionManager 创建一个新的 SessionManager 实例。
func NewSessionManager(secret string, expireHours int) *SessionManager {
	return &SessionManager{
		secretKey:  []byte(secret),
		sessionDur: time.Hour * time.Duration(expireHours),
	}
}

// Generate 为给定身份签发一个新的会话令牌。
func (m *SessionManager) Generate(ownerID, displayName string, isGuest bool) (string, error) {
	claims := SessionClaims{
		OwnerID:     ownerID,
		DisplayName: displayName,
		IsGuest:     isGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.sessionDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secretKey)
}

// Verify 验证给定的令牌字符串，有效时返回其中的 SessionClaims。
func (m *SessionManager) Verify(tokenString string) (*SessionClaims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(*SessionClaims); ok && t.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Duration 返回会话有效期，用于对齐 Redis 会话记录的过期时间。
func (m *SessionManager) Duration() time.Duration {
	return m.sessionDur
}
