package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adrev_hub_v1_202508/internal/model"

	"github.com/gin-gonic/gin"
)

// ==================== API Key 认证 ====================

// Context Keys
const (
	ContextKeyApiKey = "api_key"
)

// ApiKeyValidator 密钥校验依赖
// 中间件不直接依赖 service 包，避免包环
type ApiKeyValidator interface {
	ValidateKey(ctx context.Context, plainKey string) (*model.ApiKey, error)
	RequireScope(key *model.ApiKey, scope string) error
	EffectiveRateLimit(key *model.ApiKey) int
	TouchUsage(ctx context.Context, id int64) error
}

// ApiKeyAuth 报表 API 密钥认证 + 按密钥小时限流
// 密钥来自 Authorization: Bearer 或 X-Api-Key 头
func ApiKeyAuth(validator ApiKeyValidator, store CounterStore, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		plain := extractApiKey(c)
		if plain == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未提供 API 密钥",
			})
			c.Abort()
			return
		}

		key, err := validator.ValidateKey(c.Request.Context(), plain)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "API 密钥无效",
			})
			c.Abort()
			return
		}

		if err := validator.RequireScope(key, scope); err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": fmt.Sprintf("密钥缺少授权范围: %s", scope),
			})
			c.Abort()
			return
		}

		// 按密钥 ID 计数，换密钥不共享配额
		limit := validator.EffectiveRateLimit(key)
		count, reset, err := store.Incr(fmt.Sprintf("apikey:%d", key.ID), time.Hour)
		if err == nil {
			setRateLimitHeaders(c, limit, limit-count, reset)
			if count > limit {
				c.JSON(http.StatusTooManyRequests, gin.H{
					"code":    429,
					"message": "密钥请求配额已用完",
					"data": gin.H{
						"retry_after": int(time.Until(reset).Seconds()),
					},
				})
				c.Abort()
				return
			}
		}

		// 使用统计失败不影响请求本身
		_ = validator.TouchUsage(c.Request.Context(), key.ID)

		c.Set(ContextKeyApiKey, key)
		c.Next()
	}
}

// extractApiKey 从请求头提取明文密钥
func extractApiKey(c *gin.Context) string {
	if header := c.GetHeader("X-Api-Key"); header != "" {
		return header
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// GetApiKey 从 Context 获取已认证的密钥
func GetApiKey(c *gin.Context) *model.ApiKey {
	if key, exists := c.Get(ContextKeyApiKey); exists {
		return key.(*model.ApiKey)
	}
	return nil
}
