package dto

// ==================== 报表 ====================

// ReportListRequest 报表查询参数（query）
type ReportListRequest struct {
	Domain    string `form:"domain"`
	Network   string `form:"network" binding:"omitempty,oneof=admaven adsterra"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Limit     int    `form:"limit,default=100"`
	Offset    int    `form:"offset,default=0"`
}

// ReportRow 报表行
type ReportRow struct {
	Date        string  `json:"date"`
	Domain      string  `json:"domain"`
	Network     string  `json:"network"`
	NetRevenue  float64 `json:"net_revenue"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Ctr         float64 `json:"ctr"`
	Rpm         float64 `json:"rpm"`
}

// ReportListResponse 报表响应
type ReportListResponse struct {
	List  []ReportRow `json:"list"`
	Total int64       `json:"total"`
}
