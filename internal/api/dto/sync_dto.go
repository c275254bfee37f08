package dto

// ==================== 同步 ====================

// SyncRequest 手动同步请求参数（query）
type SyncRequest struct {
	AccountID *int64 `form:"account_id" binding:"omitempty,gt=0"`
	Domain    string `form:"domain"`
	Days      int    `form:"days" binding:"omitempty,gt=0,lte=93"`
}

// AccountSyncInfo 单账号同步明细
type AccountSyncInfo struct {
	AccountID   *int64 `json:"account_id"`
	AccountName string `json:"account_name"`
	Fetched     int    `json:"fetched"`
	Saved       int    `json:"saved"`
	Updated     int    `json:"updated"`
	Skipped     int    `json:"skipped"`
	Errors      int    `json:"errors"`
	Error       string `json:"error,omitempty"`
}

// SyncTotalsInfo 同步合计
type SyncTotalsInfo struct {
	Fetched int `json:"fetched"`
	Saved   int `json:"saved"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// OverviewInfo 汇总重算结果
type OverviewInfo struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// SyncResponse 同步响应
// 部分账号失败时仍是 200，按账号明细判断
type SyncResponse struct {
	Success  bool              `json:"success"`
	Network  string            `json:"network"`
	Accounts []AccountSyncInfo `json:"accounts"`
	Sync     SyncTotalsInfo    `json:"sync"`
	Overview *OverviewInfo     `json:"overview,omitempty"`
	Error    string            `json:"error,omitempty"`
}
