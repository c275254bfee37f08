package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 广告网络常量 ====================

// Network 广告网络标识
const (
	NetworkAdMaven  = "admaven"  // AdMaven：key+secret 签名请求
	NetworkAdsterra = "adsterra" // Adsterra：Bearer Token
)

// AllNetworks 当前支持的全部网络
var AllNetworks = []string{NetworkAdMaven, NetworkAdsterra}

// IsValidNetwork 校验网络标识
func IsValidNetwork(network string) bool {
	for _, n := range AllNetworks {
		if n == network {
			return true
		}
	}
	return false
}

// AccountStatus 账号状态
const (
	AccountStatusDisabled = 0 // 停用
	AccountStatusActive   = 1 // 正常
)

// ==================== NetworkAccount 网络账号 ====================

// NetworkAccount 广告网络账号
// 一个网络可以挂多个账号；凭证以 AES-GCM 密文存储，只在取用时解密
type NetworkAccount struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Network string `gorm:"size:32;index;not null"`
	Name    string `gorm:"size:128;not null"`

	// 加密后的凭证（base64 编码的 nonce+密文）
	CredentialBlob string `gorm:"type:text;not null"`

	IsDefault bool `gorm:"default:false"` // 同一网络最多一个默认账号
	Status    int  `gorm:"index;default:1"`

	// 最近一次同步情况
	LastSyncAt    *time.Time
	LastSyncError string `gorm:"type:text"`

	// 审计
	CreatedBy int64
	UpdatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*NetworkAccount) TableName() string {
	return "network_accounts"
}

// IsActive 账号是否可用
func (a *NetworkAccount) IsActive() bool {
	return a.Status == AccountStatusActive
}
