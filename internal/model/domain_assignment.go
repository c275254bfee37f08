package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 域名归属状态 ====================

// AssignmentStatus 归属状态
const (
	AssignmentStatusInactive = 0 // 停用（历史数据仍引用，不做物理删除）
	AssignmentStatusActive   = 1 // 生效
)

// ==================== DomainAssignment 域名归属 ====================

// DomainAssignment 域名在某个网络下的归属关系
// 同一 (domain, network) 只允许一条记录（库层唯一键），停用走 Status 而非删除；
// 分成比例决定入账净收益
type DomainAssignment struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Domain  string `gorm:"size:255;not null;index:idx_assign_key,unique,priority:1"`
	Network string `gorm:"size:32;not null;index:idx_assign_key,unique,priority:2"`

	OwnerID  int64   `gorm:"index;not null"`      // 域名归属的站长
	RevShare float64 `gorm:"not null;default:80"` // 分成比例 [0,100]

	Status int `gorm:"index;default:1"`

	// 可选：绑定到抓取该域名数据的账号
	AccountID *int64 `gorm:"index"`

	// 审计
	CreatedBy int64
	UpdatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*DomainAssignment) TableName() string {
	return "domain_assignments"
}

// IsActive 归属是否生效
func (d *DomainAssignment) IsActive() bool {
	return d.Status == AssignmentStatusActive
}

// ValidRevShare 分成比例是否合法
func ValidRevShare(v float64) bool {
	return v >= 0 && v <= 100
}
