package controller

import (
	"net/http"

	"adrev_hub_v1_202508/internal/api/dto"
	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/service"
	"adrev_hub_v1_202508/internal/task"

	"github.com/gin-gonic/gin"
)

// SyncController 同步控制器
type SyncController struct {
	ingestService *service.IngestService
	taskManager   *task.TaskManager
}

// NewSyncController 创建同步控制器
func NewSyncController(ingest *service.IngestService, taskManager *task.TaskManager) *SyncController {
	return &SyncController{
		ingestService: ingest,
		taskManager:   taskManager,
	}
}

// ==================== Handler 实现 ====================

// SyncNetwork 手动同步单个网络
// @Summary 手动同步单个网络的收益数据
// @Tags Sync (同步模块)
// @Produce json
// @Param network path string true "网络标识 admaven/adsterra"
// @Param account_id query int false "只同步指定账号"
// @Param domain query string false "只同步指定域名"
// @Param days query int false "回溯天数，默认取配置"
// @Success 200 {object} map[string]interface{} "部分账号失败仍为 200，按明细判断"
// @Failure 429 {object} map[string]interface{} "网络冷却中"
// @Router /api/v1/sync/{network} [post]
func (ctrl *SyncController) SyncNetwork(c *gin.Context) {
	network := c.Param("network")

	var req dto.SyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	// 网络级冷却，与按 IP 的限流互补
	cooldown := middleware.GetSyncLimiter().Check(
		middleware.NetworkSyncKey(network), middleware.DefaultSyncCooldown)
	if !cooldown.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    429,
			"message": "该网络同步冷却中，请稍后再试",
			"data":    gin.H{"retry_after": int(cooldown.RetryAfter.Seconds())},
		})
		return
	}

	privileged := middleware.IsPrivileged(c)
	opts := &service.SyncOptions{
		Network:                 network,
		CallerID:                middleware.GetUserID(c),
		Privileged:              privileged,
		FilterByAssignedDomains: !privileged,
		AccountID:               req.AccountID,
		Domain:                  req.Domain,
		WindowDays:              req.Days,
	}

	result, err := ctrl.ingestService.SyncNetwork(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "同步完成",
		"data":    toSyncResponse(result),
	})
}

// SyncAllNetworks 触发全部网络同步
// @Summary 异步触发全部网络的收益同步
// @Tags Sync (同步模块)
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/sync [post]
func (ctrl *SyncController) SyncAllNetworks(c *gin.Context) {
	ctrl.taskManager.TriggerAllNetworksSync()

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "全部网络同步任务已启动",
	})
}

// ==================== 工具函数 ====================

func toSyncResponse(result *service.SyncResult) dto.SyncResponse {
	resp := dto.SyncResponse{
		Success: result.Success,
		Network: result.Network,
		Error:   result.Error,
		Sync: dto.SyncTotalsInfo{
			Fetched: result.Sync.Fetched,
			Saved:   result.Sync.Saved,
			Updated: result.Sync.Updated,
			Skipped: result.Sync.Skipped,
			Errors:  result.Sync.Errors,
		},
	}
	for _, a := range result.Accounts {
		resp.Accounts = append(resp.Accounts, dto.AccountSyncInfo{
			AccountID:   a.AccountID,
			AccountName: a.AccountName,
			Fetched:     a.Fetched,
			Saved:       a.Saved,
			Updated:     a.Updated,
			Skipped:     a.Skipped,
			Errors:      a.Errors,
			Error:       a.Error,
		})
	}
	if result.Overview != nil {
		resp.Overview = &dto.OverviewInfo{
			Synced: result.Overview.Synced,
			Errors: result.Overview.Errors,
		}
	}
	return resp
}
