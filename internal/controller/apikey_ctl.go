package controller

import (
	"net/http"

	"adrev_hub_v1_202508/internal/api/dto"
	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/service"

	"github.com/gin-gonic/gin"
)

// ApiKeyController 报表密钥控制器
type ApiKeyController struct {
	apiKeyService *service.ApiKeyService
}

// NewApiKeyController 创建密钥控制器
func NewApiKeyController(s *service.ApiKeyService) *ApiKeyController {
	return &ApiKeyController{apiKeyService: s}
}

// ==================== Handler 实现 ====================

// CreateKey 签发密钥
// @Summary 签发报表 API 密钥（明文只返回这一次）
// @Tags ApiKey (密钥模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateApiKeyRequest true "密钥参数"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/apikeys [post]
func (ctrl *ApiKeyController) CreateKey(c *gin.Context) {
	var req dto.CreateApiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	callerID := middleware.GetUserID(c)
	ownerID := callerID
	// 只有管理员可以替他人签发
	if req.OwnerID != nil {
		if !middleware.IsPrivileged(c) && *req.OwnerID != callerID {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "无权替他人签发密钥"})
			return
		}
		ownerID = *req.OwnerID
	}

	issued, err := ctrl.apiKeyService.IssueKey(c.Request.Context(), &service.IssueKeyInput{
		Name:      req.Name,
		OwnerID:   ownerID,
		Scopes:    req.Scopes,
		RateLimit: req.RateLimit,
		ExpiresAt: req.ExpiresAt,
		CreatedBy: callerID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "密钥签发成功，请妥善保存明文",
		"data": dto.CreateApiKeyResponse{
			ID:        issued.ID,
			Name:      issued.Name,
			Key:       issued.PlainKey,
			Prefix:    issued.Prefix,
			Scopes:    issued.Scopes,
			RateLimit: issued.RateLimit,
			ExpiresAt: issued.ExpiresAt,
		},
	})
}

// ListKeys 密钥列表
// @Summary 密钥列表（不含明文和摘要）
// @Tags ApiKey (密钥模块)
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/apikeys [get]
func (ctrl *ApiKeyController) ListKeys(c *gin.Context) {
	ownerID := middleware.GetUserID(c)
	if middleware.IsPrivileged(c) {
		ownerID = 0 // 管理员看全部
	}

	keys, err := ctrl.apiKeyService.ListKeys(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	list := make([]dto.ApiKeyInfo, 0, len(keys))
	for i := range keys {
		list = append(list, toApiKeyInfo(&keys[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "查询成功",
		"data":    gin.H{"list": list, "total": len(list)},
	})
}

// RevokeKey 吊销密钥
// @Summary 吊销报表 API 密钥
// @Tags ApiKey (密钥模块)
// @Produce json
// @Param id path int true "密钥 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/apikeys/{id} [delete]
func (ctrl *ApiKeyController) RevokeKey(c *gin.Context) {
	id := parseID(c, "id")
	if id == 0 {
		return
	}

	err := ctrl.apiKeyService.RevokeKey(c.Request.Context(), id,
		middleware.GetUserID(c), middleware.IsPrivileged(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "密钥已吊销"})
}

// ==================== 工具函数 ====================

func toApiKeyInfo(k *model.ApiKey) dto.ApiKeyInfo {
	return dto.ApiKeyInfo{
		ID:         k.ID,
		Name:       k.Name,
		Prefix:     k.Prefix,
		OwnerID:    k.OwnerID,
		Scopes:     k.ScopeList(),
		RateLimit:  k.RateLimit,
		Status:     k.Status,
		UsageCount: k.UsageCount,
		LastUsedAt: k.LastUsedAt,
		ExpiresAt:  k.ExpiresAt,
		CreatedAt:  k.CreatedAt,
	}
}
