package task

import (
	"log"

	"adrev_hub_v1_202508/internal/config"
	"adrev_hub_v1_202508/internal/service"
)

// ==================== TaskManager 同步任务管理器 ====================

// TaskManager 统一管理后台同步任务
// 目前只有收益同步一个定时任务，留出挂新任务的位置
type TaskManager struct {
	revenueTask *RevenueSyncTask
}

// NewTaskManager 创建任务管理器
func NewTaskManager(ingestService *service.IngestService, cfg *config.SyncConfig) *TaskManager {
	return &TaskManager{
		revenueTask: NewRevenueSyncTask(ingestService, cfg.CronSpec, cfg.FallbackOwnerID),
	}
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台同步任务...")
	tm.revenueTask.Start()
	log.Println("[TaskManager] 后台同步任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台同步任务...")
	tm.revenueTask.Stop()
	log.Println("[TaskManager] 后台同步任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerAllNetworksSync 异步触发全部网络同步
func (tm *TaskManager) TriggerAllNetworksSync() {
	tm.revenueTask.SyncAllNow()
}
