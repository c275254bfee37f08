package model

import "time"

// ==================== OverviewRecord 跨网络日汇总 ====================

// OverviewRecord 按 (日期, 域名, 网络, 归属用户) 汇总的日报表
// 纯派生数据：任何时候都可以由 revenue_records 重算出完全一致的结果，
// 不存在独立的修改入口
type OverviewRecord struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	// 去重键
	Date    time.Time `gorm:"type:date;not null;index:idx_overview_key,unique,priority:1"`
	Domain  string    `gorm:"size:255;not null;index:idx_overview_key,unique,priority:2"`
	Network string    `gorm:"size:32;not null;index:idx_overview_key,unique,priority:3"`
	OwnerID int64     `gorm:"not null;index:idx_overview_key,unique,priority:4;index"`

	// 汇总指标
	NetRevenue  float64 `gorm:"not null;default:0"`
	Impressions int64   `gorm:"not null;default:0"`
	Clicks      int64   `gorm:"not null;default:0"`

	// 派生指标（impressions = 0 时为 0）
	Ctr float64 `gorm:"not null;default:0"` // clicks / impressions × 100
	Rpm float64 `gorm:"not null;default:0"` // netRevenue / impressions × 1000

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*OverviewRecord) TableName() string {
	return "overview_records"
}
