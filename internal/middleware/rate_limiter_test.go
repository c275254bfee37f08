package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 计数存储 ====================

func TestMemoryCounterStore_FixedWindow(t *testing.T) {
	store := NewMemoryCounterStore()

	for i := 1; i <= 3; i++ {
		count, reset, err := store.Incr("k", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if count != i {
			t.Errorf("count = %d, want %d", count, i)
		}
		if !reset.After(time.Now()) {
			t.Error("reset 应在未来")
		}
	}

	// 不同 key 计数独立
	count, _, _ := store.Incr("other", time.Hour)
	if count != 1 {
		t.Errorf("独立 key count = %d, want 1", count)
	}

	// Reset 后重新计数
	store.Reset("k")
	count, _, _ = store.Incr("k", time.Hour)
	if count != 1 {
		t.Errorf("Reset 后 count = %d, want 1", count)
	}
}

func TestMemoryCounterStore_WindowReset(t *testing.T) {
	store := NewMemoryCounterStore()

	store.Incr("k", 10*time.Millisecond)
	store.Incr("k", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// 窗口过期后重新计数
	count, _, _ := store.Incr("k", 10*time.Millisecond)
	if count != 1 {
		t.Errorf("窗口重置后 count = %d, want 1", count)
	}
}

// ==================== 限流中间件 ====================

func setupLimitRouter(limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping",
		RateLimitByIP(NewMemoryCounterStore(), "test", limit, window),
		func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func TestRateLimitByIP_Returns429OverLimit(t *testing.T) {
	r := setupLimitRouter(3, time.Hour)

	// 限额内全部放行
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求 code = %d, want 200", i+1, w.Code)
		}
	}

	// 第 limit+1 次拒绝
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("超限请求 code = %d, want 429", w.Code)
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %s, want 0", w.Header().Get("X-RateLimit-Remaining"))
	}
	if w.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("应返回 X-RateLimit-Reset")
	}
}

func TestRateLimitByIP_SetsHeaders(t *testing.T) {
	r := setupLimitRouter(10, time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Header().Get("X-RateLimit-Limit") != "10" {
		t.Errorf("X-RateLimit-Limit = %s, want 10", w.Header().Get("X-RateLimit-Limit"))
	}
	if w.Header().Get("X-RateLimit-Remaining") != "9" {
		t.Errorf("X-RateLimit-Remaining = %s, want 9", w.Header().Get("X-RateLimit-Remaining"))
	}
}

// ==================== 同步冷却 ====================

func TestNetworkSyncLimiter_Cooldown(t *testing.T) {
	limiter := &NetworkSyncLimiter{}
	key := NetworkSyncKey("admaven")

	first := limiter.Check(key, 100*time.Millisecond)
	if !first.Allowed {
		t.Fatal("首次应放行")
	}

	second := limiter.Check(key, 100*time.Millisecond)
	if second.Allowed {
		t.Error("冷却内应拒绝")
	}
	if second.RetryAfter <= 0 {
		t.Error("应返回剩余冷却时间")
	}

	// 不同网络互不影响
	other := limiter.Check(NetworkSyncKey("adsterra"), 100*time.Millisecond)
	if !other.Allowed {
		t.Error("不同网络应独立冷却")
	}

	// Reset 清掉冷却位后立即放行
	limiter.Reset(key)
	third := limiter.Check(key, 100*time.Millisecond)
	if !third.Allowed {
		t.Error("重置冷却后应放行")
	}

	time.Sleep(120 * time.Millisecond)
	fourth := limiter.Check(key, 100*time.Millisecond)
	if !fourth.Allowed {
		t.Error("冷却结束后应放行")
	}
}
