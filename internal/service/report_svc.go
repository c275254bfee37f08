package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
)

// ==================== ReportService 报表查询 ====================

// MaxReportPageSize 单页上限
const MaxReportPageSize = 1000

// ReportQuery 报表查询参数（来自 HTTP 层的原始字符串）
type ReportQuery struct {
	OwnerID   int64 // 0 表示不限定
	Domain    string
	Network   string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Limit     int
	Offset    int
}

// ReportService 基于汇总表的只读报表
type ReportService struct {
	overviewRepo repository.OverviewRecordRepository
}

// NewReportService 创建报表服务
func NewReportService(overviewRepo repository.OverviewRecordRepository) *ReportService {
	return &ReportService{overviewRepo: overviewRepo}
}

// ==================== 查询 ====================

// ListReports 分页查询汇总行
func (s *ReportService) ListReports(ctx context.Context, query *ReportQuery) ([]model.OverviewRecord, int64, error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, 0, err
	}
	return s.overviewRepo.List(ctx, *filter)
}

// Summary 按维度汇总；groupBy 取 day / domain / network，空串为总计
func (s *ReportService) Summary(ctx context.Context, query *ReportQuery, groupBy string) ([]repository.SummaryRow, error) {
	switch groupBy {
	case "", repository.GroupByDay, repository.GroupByDomain, repository.GroupByNetwork:
	default:
		return nil, fmt.Errorf("不支持的分组维度: %s", groupBy)
	}

	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}
	return s.overviewRepo.Summary(ctx, *filter, groupBy)
}

// ==================== CSV 导出 ====================

// ExportCSV 导出汇总行为 CSV
// 导出不分页，但仍受 MaxReportPageSize 上限保护
func (s *ReportService) ExportCSV(ctx context.Context, query *ReportQuery, w io.Writer) (int, error) {
	query.Limit = MaxReportPageSize
	query.Offset = 0

	records, _, err := s.ListReports(ctx, query)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	header := []string{"date", "domain", "network", "net_revenue", "impressions", "clicks", "ctr", "rpm"}
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("写入 CSV 失败: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Date.Format("2006-01-02"),
			r.Domain,
			r.Network,
			strconv.FormatFloat(r.NetRevenue, 'f', 6, 64),
			strconv.FormatInt(r.Impressions, 10),
			strconv.FormatInt(r.Clicks, 10),
			strconv.FormatFloat(r.Ctr, 'f', 4, 64),
			strconv.FormatFloat(r.Rpm, 'f', 6, 64),
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("写入 CSV 失败: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("写入 CSV 失败: %w", err)
	}
	return len(records), nil
}

// ==================== 参数校验 ====================

// buildFilter 校验查询参数并转为仓库过滤条件
func (s *ReportService) buildFilter(query *ReportQuery) (*repository.OverviewFilter, error) {
	filter := &repository.OverviewFilter{
		OwnerID: query.OwnerID,
		Domain:  normalizeDomain(query.Domain),
		Network: query.Network,
		Limit:   query.Limit,
		Offset:  query.Offset,
	}

	if filter.Network != "" && !model.IsValidNetwork(filter.Network) {
		return nil, fmt.Errorf("不支持的网络: %s", filter.Network)
	}
	if filter.Limit > MaxReportPageSize {
		return nil, fmt.Errorf("limit 不能超过 %d", MaxReportPageSize)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("offset 不能为负")
	}

	if query.StartDate != "" {
		t, err := parseReportDate(query.StartDate)
		if err != nil {
			return nil, fmt.Errorf("start_date 格式错误，应为 YYYY-MM-DD: %s", query.StartDate)
		}
		filter.StartDate = &t
	}
	if query.EndDate != "" {
		t, err := parseReportDate(query.EndDate)
		if err != nil {
			return nil, fmt.Errorf("end_date 格式错误，应为 YYYY-MM-DD: %s", query.EndDate)
		}
		filter.EndDate = &t
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("end_date 不能早于 start_date")
	}

	return filter, nil
}

// parseReportDate 严格按 YYYY-MM-DD 解析为 UTC 零点
func parseReportDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
