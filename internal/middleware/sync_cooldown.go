package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== NetworkSyncLimiter 同步冷却 ====================

// NetworkSyncLimiter 网络级同步冷却
// 防止同一网络被连续触发手动同步导致上游 API 限流；
// 与按 IP 的请求限流互补，这里限制的是网络本身
type NetworkSyncLimiter struct {
	locks sync.Map // key -> *cooldownEntry
}

// cooldownEntry 冷却条目
type cooldownEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalSyncLimiter = &NetworkSyncLimiter{}

// GetSyncLimiter 获取全局同步冷却器
func GetSyncLimiter() *NetworkSyncLimiter {
	return globalSyncLimiter
}

// ==================== 冷却检查 ====================

// CooldownResult 检查结果
type CooldownResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并占用冷却位
func (r *NetworkSyncLimiter) Check(key string, interval time.Duration) CooldownResult {
	actual, _ := r.locks.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CooldownResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CooldownResult{Allowed: true}
}

// Reset 重置指定 key 的冷却（测试用）
func (r *NetworkSyncLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// NetworkSyncKey 生成网络级冷却 Key
func NetworkSyncKey(network string) string {
	return fmt.Sprintf("sync:network:%s", network)
}

// DefaultSyncCooldown 手动同步的默认冷却间隔
const DefaultSyncCooldown = 3 * time.Minute
