package controller

import (
	"net/http"

	"adrev_hub_v1_202508/internal/api/dto"
	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/internal/service"

	"github.com/gin-gonic/gin"
)

// DomainController 域名归属控制器
type DomainController struct {
	resolverService *service.ResolverService
	ingestService   *service.IngestService
	defaultRevShare float64
}

// NewDomainController 创建域名控制器
func NewDomainController(resolver *service.ResolverService, ingest *service.IngestService, defaultRevShare float64) *DomainController {
	return &DomainController{
		resolverService: resolver,
		ingestService:   ingest,
		defaultRevShare: defaultRevShare,
	}
}

// ==================== Handler 实现 ====================

// CreateAssignment 创建归属
// @Summary 创建域名归属
// @Tags Domain (域名模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateAssignmentRequest true "归属参数"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/domains [post]
func (ctrl *DomainController) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	assignment := &model.DomainAssignment{
		Domain:   req.Domain,
		Network:  req.Network,
		OwnerID:  req.OwnerID,
		RevShare: req.RevShare,
		Status:   model.AssignmentStatusActive,
	}
	if assignment.RevShare == 0 {
		assignment.RevShare = ctrl.defaultRevShare
	}

	if err := ctrl.resolverService.CreateAssignment(c.Request.Context(), assignment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "归属创建成功",
		"data":    toAssignmentInfo(assignment),
	})
}

// UpdateAssignment 更新归属
// @Summary 更新域名归属（归属人、分成、状态）
// @Tags Domain (域名模块)
// @Accept json
// @Produce json
// @Param id path int true "归属 ID"
// @Param body body dto.UpdateAssignmentRequest true "更新参数"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/domains/{id} [put]
func (ctrl *DomainController) UpdateAssignment(c *gin.Context) {
	id := parseID(c, "id")
	if id == 0 {
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	input := &service.UpdateAssignmentInput{
		OwnerID:  req.OwnerID,
		RevShare: req.RevShare,
		Status:   req.Status,
	}
	if err := ctrl.resolverService.UpdateAssignment(c.Request.Context(), id, input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "归属更新成功"})
}

// ListAssignments 归属列表
// @Summary 域名归属列表
// @Tags Domain (域名模块)
// @Produce json
// @Param domain query string false "域名模糊匹配"
// @Param network query string false "网络"
// @Param owner_id query int false "归属用户 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/domains [get]
func (ctrl *DomainController) ListAssignments(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	filter := repository.DomainFilter{
		Domain:   req.Domain,
		Network:  req.Network,
		OwnerID:  req.OwnerID,
		Page:     req.Page,
		PageSize: req.Limit,
	}
	// 站长只能看自己名下的归属
	if !middleware.IsPrivileged(c) {
		filter.OwnerID = middleware.GetUserID(c)
	}

	assignments, total, err := ctrl.resolverService.ListAssignments(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	list := make([]dto.AssignmentInfo, 0, len(assignments))
	for i := range assignments {
		list = append(list, toAssignmentInfo(&assignments[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "查询成功",
		"data":    gin.H{"list": list, "total": total},
	})
}

// DiscoverDomains 域名自动发现
// @Summary 从网络侧拉取域名清单并登记默认归属
// @Tags Domain (域名模块)
// @Accept json
// @Produce json
// @Param network path string true "网络标识"
// @Param body body dto.DiscoverDomainsRequest false "发现参数"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/domains/discover/{network} [post]
func (ctrl *DomainController) DiscoverDomains(c *gin.Context) {
	network := c.Param("network")

	var req dto.DiscoverDomainsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	revShare := ctrl.defaultRevShare
	if req.RevShare != nil {
		revShare = *req.RevShare
	}
	ownerID := middleware.GetUserID(c)
	if req.OwnerID != nil {
		ownerID = *req.OwnerID
	}

	result, err := ctrl.ingestService.DiscoverDomains(c.Request.Context(), network, revShare, ownerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "域名发现完成",
		"data":    result,
	})
}

// ==================== 工具函数 ====================

func toAssignmentInfo(a *model.DomainAssignment) dto.AssignmentInfo {
	return dto.AssignmentInfo{
		ID:        a.ID,
		Domain:    a.Domain,
		Network:   a.Network,
		OwnerID:   a.OwnerID,
		RevShare:  a.RevShare,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}
