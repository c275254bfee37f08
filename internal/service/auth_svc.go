package service

import (
	"context"
	"errors"
	"fmt"

	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/pkg/utils"

	"gorm.io/gorm"
)

// ==================== AuthService 认证 ====================

// ErrInvalidCredentials 用户名或密码错误
// 用户不存在和密码错误返回同一个错误，避免用户名探测
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// TokenPair 登录/刷新返回的令牌对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService 登录与令牌刷新
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// ==================== 登录与刷新 ====================

// Login 用户名密码登录
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, *model.SysUser, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if !user.IsActive() {
		return nil, nil, fmt.Errorf("用户已停用")
	}
	if utils.HashSHA256(user.Salt+password) != user.Password {
		return nil, nil, ErrInvalidCredentials
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("生成令牌失败: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

// Refresh 用 Refresh Token 换新令牌对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := middleware.ParseToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("刷新令牌无效或已过期")
	}
	if claims.Subject != "refresh" {
		return nil, fmt.Errorf("令牌类型错误")
	}

	// 刷新时重新核对用户状态，停用的用户立即失效
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive() {
		return nil, fmt.Errorf("用户不存在或已停用")
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ==================== 用户管理 ====================

// CreateUser 创建系统用户（管理员操作）
func (s *AuthService) CreateUser(ctx context.Context, username, password, email, role string) (*model.SysUser, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("用户名和密码不能为空")
	}
	if role != model.RoleAdmin && role != model.RolePublisher {
		return nil, fmt.Errorf("未知角色: %s", role)
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("用户名已存在: %s", username)
	}

	salt, err := utils.GenerateRandomString(16)
	if err != nil {
		return nil, fmt.Errorf("生成盐值失败: %w", err)
	}
	user := &model.SysUser{
		Username: username,
		Password: utils.HashSHA256(salt + password),
		Salt:     salt,
		Email:    email,
		Role:     role,
		Status:   model.UserStatusNormal,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// ChangePassword 修改密码（需验证旧密码）
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("用户不存在")
	}
	if utils.HashSHA256(user.Salt+oldPassword) != user.Password {
		return fmt.Errorf("旧密码错误")
	}
	if newPassword == "" {
		return fmt.Errorf("新密码不能为空")
	}

	salt, err := utils.GenerateRandomString(16)
	if err != nil {
		return fmt.Errorf("生成盐值失败: %w", err)
	}
	return s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"salt":     salt,
		"password": utils.HashSHA256(salt + newPassword),
	})
}
