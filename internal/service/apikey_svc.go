package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adrev_hub_v1_202508/internal/config"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ==================== ApiKeyService 报表密钥 ====================

// ErrApiKeyInvalid 密钥不存在、停用或已过期
var ErrApiKeyInvalid = errors.New("API 密钥无效")

// ErrScopeDenied 密钥缺少所需授权范围
var ErrScopeDenied = errors.New("API 密钥授权范围不足")

// IssuedKey 新签发的密钥
// PlainKey 只在这里出现一次，之后系统里只有摘要
type IssuedKey struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	PlainKey  string     `json:"key"`
	Prefix    string     `json:"prefix"`
	Scopes    []string   `json:"scopes"`
	RateLimit int        `json:"rate_limit"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ApiKeyService 报表 API 密钥管理
type ApiKeyService struct {
	apiKeyRepo repository.ApiKeyRepository
	userRepo   repository.UserRepository
	cfg        *config.LimitConfig
}

// NewApiKeyService 创建密钥服务
func NewApiKeyService(apiKeyRepo repository.ApiKeyRepository, userRepo repository.UserRepository, cfg *config.LimitConfig) *ApiKeyService {
	return &ApiKeyService{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
		cfg:        cfg,
	}
}

// ==================== 签发与吊销 ====================

// IssueKeyInput 签发参数
type IssueKeyInput struct {
	Name      string
	OwnerID   int64
	Scopes    []string
	RateLimit int
	ExpiresAt *time.Time
	CreatedBy int64
}

// IssueKey 签发新密钥
func (s *ApiKeyService) IssueKey(ctx context.Context, input *IssueKeyInput) (*IssuedKey, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("密钥名称不能为空")
	}
	if _, err := s.userRepo.GetByID(ctx, input.OwnerID); err != nil {
		return nil, fmt.Errorf("归属用户不存在")
	}

	scopes := input.Scopes
	if len(scopes) == 0 {
		scopes = []string{model.ScopeReportsRead}
	}
	for _, scope := range scopes {
		if scope != model.ScopeReportsRead && scope != model.ScopeReportsExport {
			return nil, fmt.Errorf("未知授权范围: %s", scope)
		}
	}

	rateLimit := input.RateLimit
	if rateLimit <= 0 {
		rateLimit = model.DefaultApiKeyRateLimit
	}

	// ak_ 前缀 + 两段 UUID，去掉连字符
	plain := "ak_" + strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")

	key := &model.ApiKey{
		KeyHash:   utils.HashSHA256(plain),
		Prefix:    plain[:8],
		Name:      input.Name,
		OwnerID:   input.OwnerID,
		Scopes:    strings.Join(scopes, ","),
		RateLimit: rateLimit,
		Status:    model.ApiKeyStatusActive,
		ExpiresAt: input.ExpiresAt,
		CreatedBy: input.CreatedBy,
	}

	if err := s.apiKeyRepo.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("创建密钥失败: %w", err)
	}

	return &IssuedKey{
		ID:        key.ID,
		Name:      key.Name,
		PlainKey:  plain,
		Prefix:    key.Prefix,
		Scopes:    scopes,
		RateLimit: rateLimit,
		ExpiresAt: key.ExpiresAt,
	}, nil
}

// RevokeKey 吊销密钥
// callerID 非特权时只能吊销自己名下的密钥
func (s *ApiKeyService) RevokeKey(ctx context.Context, id, callerID int64, privileged bool) error {
	key, err := s.apiKeyRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("密钥不存在")
	}
	if !privileged && key.OwnerID != callerID {
		return fmt.Errorf("无权吊销该密钥")
	}
	return s.apiKeyRepo.UpdateFields(ctx, id, map[string]interface{}{
		"status": model.ApiKeyStatusDisabled,
	})
}

// ListKeys ownerID 为 0 时返回全部（管理员）
func (s *ApiKeyService) ListKeys(ctx context.Context, ownerID int64) ([]model.ApiKey, error) {
	if ownerID > 0 {
		return s.apiKeyRepo.ListByOwner(ctx, ownerID)
	}
	return s.apiKeyRepo.List(ctx)
}

// ==================== 校验 ====================

// ValidateKey 校验明文密钥并返回记录
// 不存在、停用、过期、归属用户停用，一律返回 ErrApiKeyInvalid，
// 对外不区分原因，避免探测
func (s *ApiKeyService) ValidateKey(ctx context.Context, plainKey string) (*model.ApiKey, error) {
	if plainKey == "" {
		return nil, ErrApiKeyInvalid
	}

	key, err := s.apiKeyRepo.GetByHash(ctx, utils.HashSHA256(plainKey))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApiKeyInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("查询密钥失败: %w", err)
	}

	if !key.IsActive() || key.IsExpired() {
		return nil, ErrApiKeyInvalid
	}

	owner, err := s.userRepo.GetByID(ctx, key.OwnerID)
	if err != nil || !owner.IsActive() {
		return nil, ErrApiKeyInvalid
	}

	return key, nil
}

// RequireScope 校验授权范围
func (s *ApiKeyService) RequireScope(key *model.ApiKey, scope string) error {
	if !key.HasScope(scope) {
		return ErrScopeDenied
	}
	return nil
}

// TouchUsage 记录一次成功请求
func (s *ApiKeyService) TouchUsage(ctx context.Context, id int64) error {
	return s.apiKeyRepo.TouchUsage(ctx, id)
}

// EffectiveRateLimit 密钥的每小时请求上限
func (s *ApiKeyService) EffectiveRateLimit(key *model.ApiKey) int {
	if key.RateLimit > 0 {
		return key.RateLimit
	}
	if s.cfg.ApiKeyFallback > 0 {
		return s.cfg.ApiKeyFallback
	}
	return model.DefaultApiKeyRateLimit
}
