package dto

import "time"

// ==================== 域名归属 ====================

// CreateAssignmentRequest 创建域名归属请求
type CreateAssignmentRequest struct {
	Domain   string  `json:"domain" binding:"required,min=3,max=255"`
	Network  string  `json:"network" binding:"required,oneof=admaven adsterra"`
	OwnerID  int64   `json:"owner_id" binding:"required,gt=0"`
	RevShare float64 `json:"rev_share" binding:"gte=0,lte=100"`
}

// UpdateAssignmentRequest 更新域名归属请求（全部选填）
type UpdateAssignmentRequest struct {
	OwnerID  *int64   `json:"owner_id" binding:"omitempty,gt=0"`
	RevShare *float64 `json:"rev_share" binding:"omitempty,gte=0,lte=100"`
	Status   *int     `json:"status" binding:"omitempty,oneof=0 1"`
}

// DiscoverDomainsRequest 域名自动发现请求
// 不传 rev_share 时使用配置的默认分成
type DiscoverDomainsRequest struct {
	RevShare *float64 `json:"rev_share" binding:"omitempty,gte=0,lte=100"`
	OwnerID  *int64   `json:"owner_id" binding:"omitempty,gt=0"`
}

// AssignmentListRequest 归属列表请求
type AssignmentListRequest struct {
	Domain  string `form:"domain"`
	Network string `form:"network" binding:"omitempty,oneof=admaven adsterra"`
	OwnerID int64  `form:"owner_id"`
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=20"`
}

// AssignmentInfo 归属信息
type AssignmentInfo struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	Network   string    `json:"network"`
	OwnerID   int64     `json:"owner_id"`
	RevShare  float64   `json:"rev_share"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
