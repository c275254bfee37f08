package repository

import (
	"context"
	"time"

	"adrev_hub_v1_202508/internal/model"

	"gorm.io/gorm"
)

// ==================== 聚合结果 ====================

// RevenueAggRow 按 (日期, 域名, 网络, 归属) 分组的聚合行
type RevenueAggRow struct {
	Date        time.Time
	Domain      string
	Network     string
	OwnerID     int64
	NetRevenue  float64
	Impressions int64
	Clicks      int64
}

// ==================== RevenueRecordRepository 原始收益仓库 ====================

// RevenueRecordRepository 原始收益仓库接口
type RevenueRecordRepository interface {
	Create(ctx context.Context, record *model.RevenueRecord) error
	Update(ctx context.Context, record *model.RevenueRecord) error
	// GetByKey 按去重键 (date, domain, network, accountID) 查找
	GetByKey(ctx context.Context, date time.Time, domain, network string, accountID int64) (*model.RevenueRecord, error)
	// AggregateByDay 按 (日期, 域名, 网络, 归属) 分组求和；ownerID 为 nil 时不限定范围
	AggregateByDay(ctx context.Context, ownerID *int64) ([]RevenueAggRow, error)
}

type revenueRecordRepository struct {
	db *gorm.DB
}

// NewRevenueRecordRepository 创建原始收益仓库
func NewRevenueRecordRepository(db *gorm.DB) RevenueRecordRepository {
	return &revenueRecordRepository{db: db}
}

func (r *revenueRecordRepository) Create(ctx context.Context, record *model.RevenueRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *revenueRecordRepository) Update(ctx context.Context, record *model.RevenueRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *revenueRecordRepository) GetByKey(ctx context.Context, date time.Time, domain, network string, accountID int64) (*model.RevenueRecord, error) {
	var record model.RevenueRecord
	err := r.db.WithContext(ctx).
		Where("date = ? AND domain = ? AND network = ? AND account_id = ?",
			date, domain, network, accountID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// AggregateByDay 汇总查询，供 Overview 重算使用
// 排序保证重算结果顺序稳定
func (r *revenueRecordRepository) AggregateByDay(ctx context.Context, ownerID *int64) ([]RevenueAggRow, error) {
	var rows []RevenueAggRow

	db := r.db.WithContext(ctx).Model(&model.RevenueRecord{}).
		Select("date, domain, network, owner_id, " +
			"COALESCE(SUM(net_revenue), 0) AS net_revenue, " +
			"COALESCE(SUM(impressions), 0) AS impressions, " +
			"COALESCE(SUM(clicks), 0) AS clicks").
		Group("date, domain, network, owner_id").
		Order("date ASC, domain ASC, network ASC, owner_id ASC")

	if ownerID != nil {
		db = db.Where("owner_id = ?", *ownerID)
	}

	err := db.Scan(&rows).Error
	return rows, err
}
