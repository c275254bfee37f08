package task

import (
	"context"
	"log"
	"sync"
	"time"

	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/service"

	"github.com/robfig/cron/v3"
)

// ==================== RevenueSyncTask 收益同步任务 ====================

// RevenueSyncTask 收益同步定时任务
// 每天按配置的 cron 表达式全量同步所有网络；
// 同一网络内账号串行，不同网络并行
type RevenueSyncTask struct {
	ingestService   *service.IngestService
	cron            *cron.Cron
	cronSpec        string
	fallbackOwnerID int64
}

// NewRevenueSyncTask 创建收益同步任务
func NewRevenueSyncTask(ingestService *service.IngestService, cronSpec string, fallbackOwnerID int64) *RevenueSyncTask {
	return &RevenueSyncTask{
		ingestService:   ingestService,
		cron:            cron.New(cron.WithSeconds()),
		cronSpec:        cronSpec,
		fallbackOwnerID: fallbackOwnerID,
	}
}

// Start 启动定时任务
func (t *RevenueSyncTask) Start() {
	_, err := t.cron.AddFunc(t.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.syncAllNetworks(ctx)
	})
	if err != nil {
		log.Printf("[RevenueSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[RevenueSyncTask] 已启动 (%s)", t.cronSpec)
}

// Stop 停止任务
func (t *RevenueSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[RevenueSyncTask] 已停止")
}

// syncAllNetworks 并行同步全部网络
func (t *RevenueSyncTask) syncAllNetworks(ctx context.Context) {
	log.Println("[RevenueSyncTask] 开始全量收益同步...")

	var wg sync.WaitGroup
	for _, network := range model.AllNetworks {
		wg.Add(1)
		go func(network string) {
			defer wg.Done()

			// 定时同步以系统身份执行，未归属域名落到兜底归属
			result, err := t.ingestService.SyncNetwork(ctx, &service.SyncOptions{
				Network:    network,
				CallerID:   t.fallbackOwnerID,
				Privileged: true,
			})
			if err != nil {
				log.Printf("[RevenueSyncTask] 网络 %s 同步失败: %v", network, err)
				return
			}
			if result.Error != "" {
				log.Printf("[RevenueSyncTask] 网络 %s: %s", network, result.Error)
				return
			}

			log.Printf("[RevenueSyncTask] 网络 %s 完成: 拉取 %d, 新增 %d, 更新 %d, 跳过 %d, 错误 %d",
				network, result.Sync.Fetched, result.Sync.Saved,
				result.Sync.Updated, result.Sync.Skipped, result.Sync.Errors)
		}(network)
	}

	wg.Wait()
	log.Println("[RevenueSyncTask] 全量收益同步完成")
}

// ==================== 手动触发 ====================

// SyncAllNow 立即触发全部网络同步（异步）
func (t *RevenueSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.syncAllNetworks(ctx)
	}()
}
