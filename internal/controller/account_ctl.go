package controller

import (
	"net/http"
	"strconv"

	"adrev_hub_v1_202508/internal/api/dto"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountController 网络账号控制器
type AccountController struct {
	vaultService *service.VaultService
}

// NewAccountController 创建账号控制器
func NewAccountController(s *service.VaultService) *AccountController {
	return &AccountController{vaultService: s}
}

// ==================== Handler 实现 ====================

// CreateAccount 创建账号
// @Summary 创建网络账号
// @Tags Account (账号模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateAccountRequest true "账号参数"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/accounts [post]
func (ctrl *AccountController) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	creds := &service.Credentials{
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		APIToken:  req.APIToken,
	}

	account, err := ctrl.vaultService.CreateAccount(c.Request.Context(), req.Network, req.Name, creds, req.IsDefault)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "账号创建成功",
		"data":    toAccountInfo(account),
	})
}

// UpdateAccount 更新账号
// @Summary 更新网络账号（凭证、状态、默认位）
// @Tags Account (账号模块)
// @Accept json
// @Produce json
// @Param id path int true "账号 ID"
// @Param body body dto.UpdateAccountRequest true "更新参数"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/accounts/{id} [put]
func (ctrl *AccountController) UpdateAccount(c *gin.Context) {
	id := parseID(c, "id")
	if id == 0 {
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	input := &service.UpdateAccountInput{
		Name:      req.Name,
		Status:    req.Status,
		IsDefault: req.IsDefault,
	}
	// 提交了任一凭证字段就整体替换凭证
	if req.APIKey != "" || req.APISecret != "" || req.APIToken != "" {
		input.Credentials = &service.Credentials{
			APIKey:    req.APIKey,
			APISecret: req.APISecret,
			APIToken:  req.APIToken,
		}
	}

	if err := ctrl.vaultService.UpdateAccount(c.Request.Context(), id, input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "账号更新成功"})
}

// ListAccounts 账号列表
// @Summary 账号列表（不含凭证）
// @Tags Account (账号模块)
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/accounts [get]
func (ctrl *AccountController) ListAccounts(c *gin.Context) {
	accounts, err := ctrl.vaultService.ListAccounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	list := make([]dto.AccountInfo, 0, len(accounts))
	for i := range accounts {
		list = append(list, toAccountInfo(&accounts[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "查询成功",
		"data":    gin.H{"list": list, "total": len(list)},
	})
}

// ==================== 工具函数 ====================

func toAccountInfo(account *model.NetworkAccount) dto.AccountInfo {
	return dto.AccountInfo{
		ID:            account.ID,
		Network:       account.Network,
		Name:          account.Name,
		IsDefault:     account.IsDefault,
		Status:        account.Status,
		LastSyncAt:    account.LastSyncAt,
		LastSyncError: account.LastSyncError,
		CreatedAt:     account.CreatedAt,
	}
}

func parseID(c *gin.Context, key string) int64 {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的 ID"})
		return 0
	}
	return id
}
