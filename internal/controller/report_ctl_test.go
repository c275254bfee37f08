package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

// setupReportRouter 组一个带已认证密钥的报表路由
// 认证中间件在各自的测试里单独覆盖，这里直接往 Context 注入密钥
func setupReportRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SysUser{}, &model.ApiKey{}, &model.OverviewRecord{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}

	// 密钥归属的普通用户，数据范围限定在自己名下
	db.Create(&model.SysUser{ID: 1, Username: "publisher1", Password: "x", Role: model.RolePublisher, Status: model.UserStatusNormal})

	ctrl := NewReportController(
		service.NewReportService(repository.NewOverviewRecordRepository(db)),
		repository.NewUserRepository(db),
	)

	withKey := func(handler gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(middleware.ContextKeyApiKey, &model.ApiKey{
				ID: 1, OwnerID: 1,
				Scopes: model.ScopeReportsRead,
				Status: model.ApiKeyStatusActive,
			})
			handler(c)
		}
	}

	r := gin.New()
	r.GET("/reports", withKey(ctrl.ListReports))
	r.GET("/reports/summary", withKey(ctrl.Summary))
	return r, db
}

func seedOverview(db *gorm.DB, date time.Time, domain string, net float64) {
	db.Create(&model.OverviewRecord{
		Date: date, Domain: domain, Network: model.NetworkAdMaven, OwnerID: 1,
		NetRevenue: net, Impressions: 1000, Clicks: 10, Ctr: 1.0, Rpm: net,
	})
}

type reportListBody struct {
	Code int `json:"code"`
	Data struct {
		List  []map[string]interface{} `json:"list"`
		Total int64                    `json:"total"`
	} `json:"data"`
}

func getReports(t *testing.T, r *gin.Engine, url string) (*httptest.ResponseRecorder, *reportListBody) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	var body reportListBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是 JSON: %v\n%s", err, w.Body.String())
	}
	return w, &body
}

// ==================== 查询参数绑定 ====================

func TestReportController_DateParamSpellings(t *testing.T) {
	r, db := setupReportRouter(t)
	seedOverview(db, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "x.com", 80)
	seedOverview(db, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), "x.com", 90)

	// 驼峰与下划线两种写法都要真正过滤，不能静默丢弃
	for _, url := range []string{
		"/reports?startDate=2025-01-01&endDate=2025-01-31",
		"/reports?start_date=2025-01-01&end_date=2025-01-31",
	} {
		w, body := getReports(t, r, url)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d\n%s", url, w.Code, w.Body.String())
		}
		if body.Data.Total != 1 {
			t.Errorf("%s: total = %d, want 1", url, body.Data.Total)
		}
		if len(body.Data.List) != 1 || body.Data.List[0]["date"] != "2025-01-15" {
			t.Errorf("%s: list = %+v, want 2025-01-15 一行", url, body.Data.List)
		}
	}

	// 非法日期要报 400，而不是当没传
	if w, _ := getReports(t, r, "/reports?startDate=2025/01/01"); w.Code != http.StatusBadRequest {
		t.Errorf("非法日期 status = %d, want 400", w.Code)
	}
}

func TestReportController_SummaryGroupBySpellings(t *testing.T) {
	r, db := setupReportRouter(t)
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	seedOverview(db, date, "a.com", 10)
	seedOverview(db, date, "b.com", 20)

	for _, url := range []string{
		"/reports/summary?groupBy=domain",
		"/reports/summary?group_by=domain",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d\n%s", url, w.Code, w.Body.String())
		}

		var body struct {
			Data struct {
				GroupBy string                   `json:"group_by"`
				Rows    []map[string]interface{} `json:"rows"`
			} `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("响应不是 JSON: %v", err)
		}
		// 按域名分组应出两行，而不是落回总计一行
		if len(body.Data.Rows) != 2 {
			t.Errorf("%s: rows = %d, want 2", url, len(body.Data.Rows))
		}
	}

	// 未知维度报 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/summary?groupBy=owner", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("未知维度 status = %d, want 400", w.Code)
	}
}
