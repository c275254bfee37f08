package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 用户角色常量 ====================

// UserRole 系统用户角色
const (
	RoleAdmin     = "admin"     // 管理员：可管理账号、域名归属、触发全量同步
	RolePublisher = "publisher" // 站长：只能查看/同步自己名下域名的数据
)

// UserStatus 用户状态
const (
	UserStatusDisabled = 0 // 停用
	UserStatusNormal   = 1 // 正常
)

// ==================== SysUser 系统用户 ====================

// SysUser 系统用户
type SysUser struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"size:64;uniqueIndex;not null"`
	Password string `gorm:"size:128;not null"` // SHA-256(盐+明文)
	Salt     string `gorm:"size:32"`
	Email    string `gorm:"size:255"`

	Role   string `gorm:"size:32;index;default:publisher"`
	Status int    `gorm:"default:1"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*SysUser) TableName() string {
	return "sys_users"
}

// IsPrivileged 是否为特权用户（管理员）
func (u *SysUser) IsPrivileged() bool {
	return u.Role == RoleAdmin
}

// IsActive 用户是否可用
func (u *SysUser) IsActive() bool {
	return u.Status == UserStatusNormal
}
