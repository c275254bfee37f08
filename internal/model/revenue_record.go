package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== RevenueRecord 原始收益记录 ====================

// LegacyAccountID 环境变量合成账号在去重键中的占位 ID
// 数据库账号从 1 开始自增，0 不会冲突
const LegacyAccountID int64 = 0

// RevenueRecord 按 (日期, 域名, 网络, 来源账号) 去重的原始收益记录
// 由同步任务写入；同步重复执行时按容差比对，值未变则跳过
type RevenueRecord struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	// 去重键
	Date      time.Time `gorm:"type:date;not null;index:idx_revenue_key,unique,priority:1"`
	Domain    string    `gorm:"size:255;not null;index:idx_revenue_key,unique,priority:2"`
	Network   string    `gorm:"size:32;not null;index:idx_revenue_key,unique,priority:3"`
	AccountID int64     `gorm:"not null;default:0;index:idx_revenue_key,unique,priority:4"` // 0 = 环境变量合成账号

	// 归属
	OwnerID  int64   `gorm:"index;not null"`
	RevShare float64 // 入账时生效的分成比例，留档便于追溯

	// 指标
	GrossRevenue float64 `gorm:"not null;default:0"`
	NetRevenue   float64 `gorm:"not null;default:0"` // gross × revShare / 100，入账时计算
	Impressions  int64   `gorm:"not null;default:0"`
	Clicks       int64   `gorm:"not null;default:0"`
	Currency     string  `gorm:"size:10;default:USD"`

	// 上游原始数据（PostgreSQL JSONB）
	RawPayload datatypes.JSON `gorm:"type:jsonb"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*RevenueRecord) TableName() string {
	return "revenue_records"
}
