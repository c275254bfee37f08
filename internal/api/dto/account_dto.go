package dto

import "time"

// ==================== 网络账号 ====================

// CreateAccountRequest 创建网络账号请求
// 凭证字段按网络选填：admaven 需要 api_key + api_secret，adsterra 需要 api_token
type CreateAccountRequest struct {
	Network   string `json:"network" binding:"required,oneof=admaven adsterra"`
	Name      string `json:"name" binding:"required,min=1,max=128"`
	IsDefault bool   `json:"is_default"`

	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	APIToken  string `json:"api_token"`
}

// UpdateAccountRequest 更新网络账号请求（全部选填）
type UpdateAccountRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=128"`
	Status    *int    `json:"status" binding:"omitempty,oneof=0 1"`
	IsDefault *bool   `json:"is_default"`

	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	APIToken  string `json:"api_token"`
}

// AccountInfo 账号信息（绝不带凭证）
type AccountInfo struct {
	ID            int64      `json:"id"`
	Network       string     `json:"network"`
	Name          string     `json:"name"`
	IsDefault     bool       `json:"is_default"`
	Status        int        `json:"status"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	LastSyncError string     `json:"last_sync_error,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
