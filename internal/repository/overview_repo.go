package repository

import (
	"context"
	"errors"
	"time"

	"adrev_hub_v1_202508/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// OverviewFilter 报表查询过滤条件
type OverviewFilter struct {
	OwnerID   int64 // 0 表示不限定（管理员范围密钥）
	Domain    string
	Network   string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// SummaryGroupBy 汇总分组维度
const (
	GroupByDay     = "day"
	GroupByDomain  = "domain"
	GroupByNetwork = "network"
)

// SummaryRow 汇总行；分组键按维度填充，总计时全部为空
type SummaryRow struct {
	Date        *time.Time `json:"date,omitempty"`
	Domain      string     `json:"domain,omitempty"`
	Network     string     `json:"network,omitempty"`
	NetRevenue  float64    `json:"net_revenue"`
	Impressions int64      `json:"impressions"`
	Clicks      int64      `json:"clicks"`
}

// ==================== OverviewRecordRepository 汇总仓库 ====================

// OverviewRecordRepository 跨网络日汇总仓库接口
type OverviewRecordRepository interface {
	// Upsert 按 (date, domain, network, ownerID) 幂等写入
	Upsert(ctx context.Context, record *model.OverviewRecord) error
	List(ctx context.Context, filter OverviewFilter) ([]model.OverviewRecord, int64, error)
	Summary(ctx context.Context, filter OverviewFilter, groupBy string) ([]SummaryRow, error)
	GetByKey(ctx context.Context, date time.Time, domain, network string, ownerID int64) (*model.OverviewRecord, error)
}

type overviewRecordRepository struct {
	db *gorm.DB
}

// NewOverviewRecordRepository 创建汇总仓库
func NewOverviewRecordRepository(db *gorm.DB) OverviewRecordRepository {
	return &overviewRecordRepository{db: db}
}

// Upsert 存在则覆盖指标字段，不存在则插入
// 汇总行是派生数据，覆盖写不会丢失任何事实
func (r *overviewRecordRepository) Upsert(ctx context.Context, record *model.OverviewRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.OverviewRecord
		err := tx.Where("date = ? AND domain = ? AND network = ? AND owner_id = ?",
			record.Date, record.Domain, record.Network, record.OwnerID).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(record).Error
		}
		if err != nil {
			return err
		}

		return tx.Model(&model.OverviewRecord{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"net_revenue": record.NetRevenue,
				"impressions": record.Impressions,
				"clicks":      record.Clicks,
				"ctr":         record.Ctr,
				"rpm":         record.Rpm,
			}).Error
	})
}

func (r *overviewRecordRepository) List(ctx context.Context, filter OverviewFilter) ([]model.OverviewRecord, int64, error) {
	var records []model.OverviewRecord
	var total int64

	db := r.applyFilter(ctx, filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	err := db.Order("date DESC, domain ASC, network ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&records).Error

	return records, total, err
}

// Summary 按维度汇总；groupBy 为空返回单行总计
func (r *overviewRecordRepository) Summary(ctx context.Context, filter OverviewFilter, groupBy string) ([]SummaryRow, error) {
	var rows []SummaryRow

	db := r.applyFilter(ctx, filter)

	sums := "COALESCE(SUM(net_revenue), 0) AS net_revenue, " +
		"COALESCE(SUM(impressions), 0) AS impressions, " +
		"COALESCE(SUM(clicks), 0) AS clicks"

	switch groupBy {
	case GroupByDay:
		db = db.Select("date, " + sums).Group("date").Order("date ASC")
	case GroupByDomain:
		db = db.Select("domain, " + sums).Group("domain").Order("domain ASC")
	case GroupByNetwork:
		db = db.Select("network, " + sums).Group("network").Order("network ASC")
	default:
		db = db.Select(sums)
	}

	err := db.Scan(&rows).Error
	return rows, err
}

func (r *overviewRecordRepository) GetByKey(ctx context.Context, date time.Time, domain, network string, ownerID int64) (*model.OverviewRecord, error) {
	var record model.OverviewRecord
	err := r.db.WithContext(ctx).
		Where("date = ? AND domain = ? AND network = ? AND owner_id = ?",
			date, domain, network, ownerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// applyFilter 组装公共过滤条件
func (r *overviewRecordRepository) applyFilter(ctx context.Context, filter OverviewFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.OverviewRecord{})

	if filter.OwnerID > 0 {
		db = db.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Domain != "" {
		db = db.Where("domain = ?", filter.Domain)
	}
	if filter.Network != "" {
		db = db.Where("network = ?", filter.Network)
	}
	if filter.StartDate != nil {
		db = db.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("date <= ?", *filter.EndDate)
	}

	return db
}
