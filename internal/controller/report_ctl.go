package controller

import (
	"fmt"
	"net/http"
	"time"

	"adrev_hub_v1_202508/internal/api/dto"
	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportController 报表控制器
// 认证走 API 密钥，数据范围由密钥归属用户决定
type ReportController struct {
	reportService *service.ReportService
	userRepo      repository.UserRepository
}

// NewReportController 创建报表控制器
func NewReportController(reportService *service.ReportService, userRepo repository.UserRepository) *ReportController {
	return &ReportController{
		reportService: reportService,
		userRepo:      userRepo,
	}
}

// ==================== Handler 实现 ====================

// ListReports 报表查询
// @Summary 汇总报表分页查询
// @Tags Report (报表模块)
// @Produce json
// @Param start_date query string false "起始日期 YYYY-MM-DD（别名 startDate）"
// @Param end_date query string false "结束日期 YYYY-MM-DD（别名 endDate）"
// @Param domain query string false "域名"
// @Param network query string false "网络"
// @Param format query string false "json 或 csv，csv 需要 reports:export"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reports [get]
func (ctrl *ReportController) ListReports(c *gin.Context) {
	query, ok := ctrl.bindQuery(c)
	if !ok {
		return
	}

	// format=csv 等价于走导出，额外要求导出范围
	switch c.DefaultQuery("format", "json") {
	case "json":
	case "csv":
		if key := middleware.GetApiKey(c); key == nil || !key.HasScope(model.ScopeReportsExport) {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "密钥缺少授权范围: " + model.ScopeReportsExport})
			return
		}
		ctrl.writeCSV(c, query)
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "format 只支持 json 或 csv"})
		return
	}

	records, total, err := ctrl.reportService.ListReports(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	list := make([]dto.ReportRow, 0, len(records))
	for _, r := range records {
		list = append(list, dto.ReportRow{
			Date:        r.Date.Format("2006-01-02"),
			Domain:      r.Domain,
			Network:     r.Network,
			NetRevenue:  r.NetRevenue,
			Impressions: r.Impressions,
			Clicks:      r.Clicks,
			Ctr:         r.Ctr,
			Rpm:         r.Rpm,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "查询成功",
		"data":    dto.ReportListResponse{List: list, Total: total},
	})
}

// Summary 汇总查询
// @Summary 按维度汇总（day/domain/network，缺省为总计）
// @Tags Report (报表模块)
// @Produce json
// @Param group_by query string false "分组维度 day/domain/network（别名 groupBy）"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reports/summary [get]
func (ctrl *ReportController) Summary(c *gin.Context) {
	query, ok := ctrl.bindQuery(c)
	if !ok {
		return
	}

	groupBy := c.Query("group_by")
	if groupBy == "" {
		groupBy = c.Query("groupBy")
	}
	rows, err := ctrl.reportService.Summary(c.Request.Context(), query, groupBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "查询成功",
		"data":    gin.H{"group_by": groupBy, "rows": rows},
	})
}

// ExportCSV 导出 CSV
// @Summary 导出汇总报表为 CSV
// @Tags Report (报表模块)
// @Produce text/csv
// @Success 200 {string} string "CSV 内容"
// @Router /api/v1/reports/export [get]
func (ctrl *ReportController) ExportCSV(c *gin.Context) {
	query, ok := ctrl.bindQuery(c)
	if !ok {
		return
	}
	ctrl.writeCSV(c, query)
}

// writeCSV 以附件形式写出 CSV
func (ctrl *ReportController) writeCSV(c *gin.Context, query *service.ReportQuery) {
	filename := fmt.Sprintf("revenue_report_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if _, err := ctrl.reportService.ExportCSV(c.Request.Context(), query, c.Writer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
	}
}

// ==================== 工具函数 ====================

// bindQuery 绑定查询参数并套上密钥的数据范围
func (ctrl *ReportController) bindQuery(c *gin.Context) (*service.ReportQuery, bool) {
	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return nil, false
	}

	// 驼峰参数名与下划线写法等价
	if req.StartDate == "" {
		req.StartDate = c.Query("startDate")
	}
	if req.EndDate == "" {
		req.EndDate = c.Query("endDate")
	}

	query := &service.ReportQuery{
		Domain:    req.Domain,
		Network:   req.Network,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}

	// 密钥只能看归属用户范围的数据；管理员的密钥不限范围
	if key := middleware.GetApiKey(c); key != nil {
		query.OwnerID = key.OwnerID
		if owner, err := ctrl.userRepo.GetByID(c.Request.Context(), key.OwnerID); err == nil && owner.IsPrivileged() {
			query.OwnerID = 0
		}
	}

	return query, true
}
