package dto

import "time"

// ==================== API 密钥 ====================

// CreateApiKeyRequest 签发密钥请求
type CreateApiKeyRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=128"`
	OwnerID   *int64     `json:"owner_id" binding:"omitempty,gt=0"` // 管理员可替他人签发
	Scopes    []string   `json:"scopes" binding:"omitempty,dive,oneof=reports:read reports:export"`
	RateLimit int        `json:"rate_limit" binding:"omitempty,gt=0"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateApiKeyResponse 签发响应，key 只在这里出现一次
type CreateApiKeyResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	Prefix    string     `json:"prefix"`
	Scopes    []string   `json:"scopes"`
	RateLimit int        `json:"rate_limit"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ApiKeyInfo 密钥信息（不含摘要）
type ApiKeyInfo struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	OwnerID    int64      `json:"owner_id"`
	Scopes     []string   `json:"scopes"`
	RateLimit  int        `json:"rate_limit"`
	Status     int        `json:"status"`
	UsageCount int64      `json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
