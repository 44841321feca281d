// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"know-law-go/internal/model"
	"know-law-go/internal/repository"
	"know-law-go/pkg/hash"
	"know-law-go/pkg/log"
	"know-law-go/pkg/token"
)

// UserService 接口定义了所有与身份相关的业务操作。
// 会话建立遵循两步访客约定：未认证的调用方不会被隐式升级为访客，
// 需要显式调用 CreateGuest。
type UserService interface {
	Register(ctx context.Context, name, email, password, confirmPassword string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	CreateGuest(ctx context.Context) (model.Identity, string, error)
	Logout(ctx context.Context, tokenString string) error
	ResolveIdentity(ctx context.Context, tokenString string) (*model.Identity, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	sessionManager *token.SessionManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, sessionManager *token.SessionManager) UserService {
	return &userService{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		sessionManager: sessionManager,
	}
}

// Register 处理用户注册的业务逻辑，成功后直接建立会话。
func (s *userService) Register(ctx context.Context, name, email, password, confirmPassword string) (*model.User, string, error) {
	// 1. 字段校验：四个字段均不能为空
	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, "", fmt.Errorf("%w: 所有字段均为必填", ErrValidation)
	}
	if password != confirmPassword {
		return nil, "", fmt.Errorf("%w: 两次输入的密码不一致", ErrValidation)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("%w: 密码长度至少为 6 位", ErrValidation)
	}

	// 2. 检查邮箱是否已存在（精确匹配，保持原始行为）
	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailTaken
	}

	// 3. 对密码进行哈希处理；明文密码不落库、不写日志
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	newUser := &model.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		// 并发注册可能绕过上面的存在性检查，由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	// 4. 建立会话
	sessionToken, err := s.establishSession(ctx, model.RegisteredOwner(newUser.ID).String(), newUser.Name, false)
	if err != nil {
		return nil, "", err
	}

	log.Infof("[UserService] 用户注册成功, email: %s", email)
	return newUser, sessionToken, nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !hash.CheckPasswordHash(password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	sessionToken, err := s.establishSession(ctx, model.RegisteredOwner(user.ID).String(), user.Name, false)
	if err != nil {
		return nil, "", err
	}

	log.Infof("[UserService] 用户登录成功, email: %s", email)
	return user, sessionToken, nil
}

// CreateGuest 建立一个访客会话。访客不写入 users 表，
// 统一使用固定的 "guest" 归属标识。
func (s *userService) CreateGuest(ctx context.Context) (model.Identity, string, error) {
	identity := model.Identity{
		Owner:       model.GuestOwner(),
		DisplayName: "Guest",
	}
	sessionToken, err := s.establishSession(ctx, identity.Owner.String(), identity.DisplayName, true)
	if err != nil {
		return model.Identity{}, "", err
	}
	log.Info("[UserService] 已建立访客会话")
	return identity, sessionToken, nil
}

// Logout 销毁会话；之后同一令牌的 ResolveIdentity 返回匿名。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	return s.sessionRepo.Delete(ctx, tokenString)
}

// ResolveIdentity 将会话令牌解析为调用方身份。
// 令牌无效、过期或会话记录已删除时返回 (nil, nil)，表示匿名。
func (s *userService) ResolveIdentity(ctx context.Context, tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, nil
	}

	if _, err := s.sessionManager.Verify(tokenString); err != nil {
		return nil, nil
	}

	// 会话记录是服务端的权威状态；记录缺失说明已注销
	record, err := s.sessionRepo.Get(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	identity := identityFromRecord(record)
	return &identity, nil
}

// establishSession 签发令牌并写入服务端会话记录。
func (s *userService) establishSession(ctx context.Context, ownerID, displayName string, isGuest bool) (string, error) {
	sessionToken, err := s.sessionManager.Generate(ownerID, displayName, isGuest)
	if err != nil {
		return "", err
	}
	record := repository.SessionRecord{
		OwnerID:     ownerID,
		DisplayName: displayName,
		IsGuest:     isGuest,
	}
	if err := s.sessionRepo.Save(ctx, sessionToken, record, s.sessionManager.Duration()); err != nil {
		return "", err
	}
	return sessionToken, nil
}

// identityFromRecord 将会话记录还原为业务身份。
func identityFromRecord(record *repository.SessionRecord) model.Identity {
	if record.IsGuest {
		return model.Identity{Owner: model.GuestOwner(), DisplayName: record.DisplayName}
	}
	var userID uint
	// owner 列存储的是十进制用户 ID
	if _, err := fmt.Sscanf(record.OwnerID, "%d", &userID); err != nil {
		// 记录损坏时按访客处理，避免越权
		return model.Identity{Owner: model.GuestOwner(), DisplayName: record.DisplayName}
	}
	return model.Identity{Owner: model.RegisteredOwner(userID), DisplayName: record.DisplayName}
}
