package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ==================== API Key 常量 ====================

// ApiKeyScope 授权范围
const (
	ScopeReportsRead   = "reports:read"   // 读取报表
	ScopeReportsExport = "reports:export" // 导出 CSV
)

// ApiKeyStatus 状态
const (
	ApiKeyStatusDisabled = 0
	ApiKeyStatusActive   = 1
)

// DefaultApiKeyRateLimit 默认每小时请求上限
const DefaultApiKeyRateLimit = 1000

// ==================== ApiKey 模型 ====================

// ApiKey 报表 API 密钥
// 只存 SHA-256 摘要，明文仅在创建时返回一次
type ApiKey struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	KeyHash string `gorm:"size:64;uniqueIndex;not null"`
	Prefix  string `gorm:"size:16"` // 明文前 8 位，便于后台辨认
	Name    string `gorm:"size:128;not null"`

	OwnerID int64  `gorm:"index;not null"`
	Scopes  string `gorm:"size:255;default:reports:read"` // 逗号分隔

	RateLimit int `gorm:"default:1000"` // 每小时请求上限
	Status    int `gorm:"index;default:1"`

	ExpiresAt *time.Time

	// 使用统计
	UsageCount int64 `gorm:"default:0"`
	LastUsedAt *time.Time

	// 审计
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*ApiKey) TableName() string {
	return "api_keys"
}

// IsActive 密钥是否可用
func (k *ApiKey) IsActive() bool {
	return k.Status == ApiKeyStatusActive
}

// IsExpired 是否已过期
func (k *ApiKey) IsExpired() bool {
	return k.ExpiresAt != nil && time.Now().After(*k.ExpiresAt)
}

// HasScope 是否具备指定授权范围
func (k *ApiKey) HasScope(scope string) bool {
	for _, s := range strings.Split(k.Scopes, ",") {
		if strings.TrimSpace(s) == scope {
			return true
		}
	}
	return false
}

// ScopeList 返回授权范围列表
func (k *ApiKey) ScopeList() []string {
	parts := strings.Split(k.Scopes, ",")
	scopes := make([]string, 0, len(parts))
	for _, s := range parts {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}
	return scopes
}
