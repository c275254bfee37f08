package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== CounterStore 计数存储 ====================

// CounterStore 固定窗口计数存储
// 单机部署用内存实现；多实例部署时换成共享存储实现即可，
// 中间件逻辑不感知存储形态
type CounterStore interface {
	// Incr 窗口内计数 +1，返回当前计数与窗口重置时间
	Incr(key string, window time.Duration) (count int, reset time.Time, err error)
}

// ==================== MemoryCounterStore 内存实现 ====================

// windowCounter 单 key 的窗口计数
type windowCounter struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// MemoryCounterStore 进程内固定窗口计数
type MemoryCounterStore struct {
	counters sync.Map // key -> *windowCounter
}

// NewMemoryCounterStore 创建内存计数存储
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{}
}

func (s *MemoryCounterStore) Incr(key string, window time.Duration) (int, time.Time, error) {
	actual, _ := s.counters.LoadOrStore(key, &windowCounter{})
	counter := actual.(*windowCounter)

	counter.mu.Lock()
	defer counter.mu.Unlock()

	now := time.Now()
	if now.After(counter.resetAt) {
		counter.count = 0
		counter.resetAt = now.Add(window)
	}

	counter.count++
	return counter.count, counter.resetAt, nil
}

// Reset 清掉指定 key（测试用）
func (s *MemoryCounterStore) Reset(key string) {
	s.counters.Delete(key)
}

// ==================== 限流中间件 ====================

// RateLimitByIP 按客户端 IP 的固定窗口限流
// name 区分不同接口组的计数空间
func RateLimitByIP(store CounterStore, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:ip:%s", name, c.ClientIP())

		count, reset, err := store.Incr(key, window)
		if err != nil {
			// 计数存储故障不应把接口打死，放行并继续
			c.Next()
			return
		}

		setRateLimitHeaders(c, limit, limit-count, reset)

		if count > limit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "请求过于频繁，请稍后再试",
				"data": gin.H{
					"retry_after": int(time.Until(reset).Seconds()),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders 标准限流响应头
func setRateLimitHeaders(c *gin.Context, limit, remaining int, reset time.Time) {
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
}
