package service

import (
	"context"
	"fmt"
	"log"
	"math"

	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
)

// ==================== OverviewService 跨网络日汇总 ====================

// RebuildResult 重算结果
type RebuildResult struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// OverviewService 汇总表重算
// overview_records 是 revenue_records 的纯函数，只有这里会写它
type OverviewService struct {
	revenueRepo  repository.RevenueRecordRepository
	overviewRepo repository.OverviewRecordRepository
}

// NewOverviewService 创建汇总服务
func NewOverviewService(revenueRepo repository.RevenueRecordRepository, overviewRepo repository.OverviewRecordRepository) *OverviewService {
	return &OverviewService{
		revenueRepo:  revenueRepo,
		overviewRepo: overviewRepo,
	}
}

// Rebuild 重算汇总表
// scopeOwnerID 为 nil 时重算全量（管理员触发），否则只算该用户范围
// 原始数据不变时重复执行产生完全一致的汇总行
func (s *OverviewService) Rebuild(ctx context.Context, scopeOwnerID *int64) (*RebuildResult, error) {
	rows, err := s.revenueRepo.AggregateByDay(ctx, scopeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("聚合原始收益失败: %w", err)
	}

	result := &RebuildResult{}
	for _, row := range rows {
		record := &model.OverviewRecord{
			Date:        DateOnly(row.Date),
			Domain:      row.Domain,
			Network:     row.Network,
			OwnerID:     row.OwnerID,
			NetRevenue:  roundTo(row.NetRevenue, 6),
			Impressions: row.Impressions,
			Clicks:      row.Clicks,
			Ctr:         deriveCtr(row.Clicks, row.Impressions),
			Rpm:         deriveRpm(row.NetRevenue, row.Impressions),
		}

		if err := s.overviewRepo.Upsert(ctx, record); err != nil {
			log.Printf("[Overview] 写入汇总行失败 (%s %s %s): %v",
				record.Date.Format("2006-01-02"), record.Domain, record.Network, err)
			result.Errors++
			continue
		}
		result.Synced++
	}

	return result, nil
}

// ==================== 派生指标 ====================

// deriveCtr clicks / impressions × 100，无展示时为 0
func deriveCtr(clicks, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return roundTo(float64(clicks)/float64(impressions)*100, 4)
}

// deriveRpm netRevenue / impressions × 1000，无展示时为 0
func deriveRpm(netRevenue float64, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return roundTo(netRevenue/float64(impressions)*1000, 6)
}

// roundTo 固定精度取整，保证重算结果字节级一致
func roundTo(v float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Round(v*factor) / factor
}
