package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"

	"gorm.io/gorm"
)

// ==================== 测试辅助 ====================

func setupReportTest(t *testing.T) (*ReportService, *gorm.DB) {
	db := setupTestDB(t)
	return NewReportService(repository.NewOverviewRecordRepository(db)), db
}

func seedOverview(db *gorm.DB, date time.Time, domain, network string, ownerID int64, net float64) {
	db.Create(&model.OverviewRecord{
		Date: date, Domain: domain, Network: network, OwnerID: ownerID,
		NetRevenue: net, Impressions: 1000, Clicks: 10, Ctr: 1.0, Rpm: net,
	})
}

// ==================== 查询与校验 ====================

func TestReportService_ListReports(t *testing.T) {
	svc, db := setupReportTest(t)
	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	seedOverview(db, day1, "a.com", model.NetworkAdMaven, 1, 10)
	seedOverview(db, day2, "a.com", model.NetworkAdMaven, 1, 20)
	seedOverview(db, day2, "b.com", model.NetworkAdsterra, 2, 30)

	// 日期区间过滤
	records, total, err := svc.ListReports(context.Background(), &ReportQuery{
		StartDate: "2025-01-02", EndDate: "2025-01-02",
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Errorf("total = %d, len = %d, want 2, 2", total, len(records))
	}

	// 归属范围过滤
	records, _, err = svc.ListReports(context.Background(), &ReportQuery{OwnerID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Domain != "b.com" {
		t.Errorf("owner 过滤结果 = %+v", records)
	}
}

func TestReportService_QueryValidation(t *testing.T) {
	svc, _ := setupReportTest(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		query ReportQuery
	}{
		{"日期格式错误", ReportQuery{StartDate: "01/02/2025"}},
		{"日期非法", ReportQuery{StartDate: "2025-13-40"}},
		{"区间颠倒", ReportQuery{StartDate: "2025-01-10", EndDate: "2025-01-01"}},
		{"limit 超限", ReportQuery{Limit: 5000}},
		{"offset 为负", ReportQuery{Offset: -1}},
		{"未知网络", ReportQuery{Network: "unknown"}},
	}

	for _, tc := range cases {
		if _, _, err := svc.ListReports(ctx, &tc.query); err == nil {
			t.Errorf("%s: 应返回错误", tc.name)
		}
	}
}

func TestReportService_Summary(t *testing.T) {
	svc, db := setupReportTest(t)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	seedOverview(db, day, "a.com", model.NetworkAdMaven, 1, 10)
	seedOverview(db, day, "b.com", model.NetworkAdMaven, 1, 20)
	seedOverview(db, day, "a.com", model.NetworkAdsterra, 1, 30)

	// 按网络分组
	rows, err := svc.Summary(context.Background(), &ReportQuery{}, repository.GroupByNetwork)
	if err != nil {
		t.Fatalf("汇总失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("分组行数 = %d, want 2", len(rows))
	}

	// 总计单行
	rows, err = svc.Summary(context.Background(), &ReportQuery{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].NetRevenue != 60 {
		t.Errorf("总计 = %+v, want 单行 60", rows)
	}

	// 未知维度
	if _, err := svc.Summary(context.Background(), &ReportQuery{}, "hour"); err == nil {
		t.Error("未知分组维度应返回错误")
	}
}

// ==================== CSV 导出 ====================

func TestReportService_ExportCSV(t *testing.T) {
	svc, db := setupReportTest(t)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	seedOverview(db, day, "a.com", model.NetworkAdMaven, 1, 80)

	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), &ReportQuery{}, &buf)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if n != 1 {
		t.Errorf("导出行数 = %d, want 1", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("CSV 行数 = %d, want 2（表头+数据）", len(lines))
	}
	if lines[0] != "date,domain,network,net_revenue,impressions,clicks,ctr,rpm" {
		t.Errorf("表头 = %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2025-01-01,a.com,admaven,") {
		t.Errorf("数据行 = %s", lines[1])
	}
}
