package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/pkg/utils"

	"gorm.io/gorm"
)

// ==================== ResolverService 域名归属解析 ====================

// ErrOwnerNotFound 域名在该网络下没有生效归属
var ErrOwnerNotFound = errors.New("域名未归属")

// Ownership 归属解析结果
type Ownership struct {
	OwnerID  int64
	RevShare float64
}

// DiscoverResult 域名自动发现结果
type DiscoverResult struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Errors   int `json:"errors"`
}

// ResolverService 域名归属解析
// 严格按 (domain, network) 查找，网络之间互不兜底
type ResolverService struct {
	domainRepo repository.DomainAssignmentRepository
	cache      *utils.TTLCache
}

// NewResolverService 创建解析服务
func NewResolverService(domainRepo repository.DomainAssignmentRepository) *ResolverService {
	return &ResolverService{
		domainRepo: domainRepo,
		// 同一次同步里同一域名会查很多次，短 TTL 缓存足够
		cache: utils.NewTTLCache(5 * time.Minute),
	}
}

// ==================== 归属解析 ====================

// ResolveOwner 解析 (domain, network) 的归属
// 未归属返回 ErrOwnerNotFound
func (s *ResolverService) ResolveOwner(ctx context.Context, domain, network string) (*Ownership, error) {
	domain = normalizeDomain(domain)
	cacheKey := network + ":" + domain

	if cached, ok := s.cache.Get(cacheKey); ok {
		if cached == nil {
			return nil, ErrOwnerNotFound
		}
		ownership := cached.(Ownership)
		return &ownership, nil
	}

	assignment, err := s.domainRepo.GetActive(ctx, domain, network)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var nothing interface{}
		s.cache.Set(cacheKey, nothing) // 负缓存，避免反复查不存在的域名
		return nil, ErrOwnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询域名归属失败: %w", err)
	}

	ownership := Ownership{
		OwnerID:  assignment.OwnerID,
		RevShare: assignment.RevShare,
	}
	s.cache.Set(cacheKey, ownership)
	return &ownership, nil
}

// InvalidateCache 归属变更后清缓存
func (s *ResolverService) InvalidateCache() {
	s.cache.Flush()
}

// ==================== 自动发现 ====================

// DiscoverAndAssign 为未登记的域名创建默认归属
// 已存在的归属（含停用）一律不动，重复执行结果不变
func (s *ResolverService) DiscoverAndAssign(ctx context.Context, domains []string, network string, defaultRevShare float64, requestingAdminID int64) (*DiscoverResult, error) {
	if !model.IsValidNetwork(network) {
		return nil, fmt.Errorf("不支持的网络: %s", network)
	}
	if !model.ValidRevShare(defaultRevShare) {
		return nil, fmt.Errorf("分成比例必须在 0-100 之间: %.2f", defaultRevShare)
	}

	result := &DiscoverResult{}
	seen := make(map[string]bool)

	for _, raw := range domains {
		domain := normalizeDomain(raw)
		if domain == "" || seen[domain] {
			continue
		}
		seen[domain] = true

		assignment := &model.DomainAssignment{
			Domain:   domain,
			Network:  network,
			OwnerID:  requestingAdminID,
			RevShare: defaultRevShare,
			Status:   model.AssignmentStatusActive,
		}

		created, err := s.domainRepo.CreateIfAbsent(ctx, assignment)
		if err != nil {
			result.Errors++
			continue
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
	}

	if result.Created > 0 {
		s.InvalidateCache()
	}
	return result, nil
}

// ==================== 归属维护 ====================

// CreateAssignment 管理员手动创建归属
func (s *ResolverService) CreateAssignment(ctx context.Context, assignment *model.DomainAssignment) error {
	if !model.IsValidNetwork(assignment.Network) {
		return fmt.Errorf("不支持的网络: %s", assignment.Network)
	}
	if !model.ValidRevShare(assignment.RevShare) {
		return fmt.Errorf("分成比例必须在 0-100 之间: %.2f", assignment.RevShare)
	}
	assignment.Domain = normalizeDomain(assignment.Domain)
	if assignment.Domain == "" {
		return fmt.Errorf("域名不能为空")
	}

	created, err := s.domainRepo.CreateIfAbsent(ctx, assignment)
	if err != nil {
		return fmt.Errorf("创建归属失败: %w", err)
	}
	if !created {
		return fmt.Errorf("该域名在网络 %s 下已有归属", assignment.Network)
	}
	s.InvalidateCache()
	return nil
}

// UpdateAssignmentInput 归属部分更新
type UpdateAssignmentInput struct {
	OwnerID  *int64
	RevShare *float64
	Status   *int
}

// UpdateAssignment 更新归属（分成变更不追溯历史净收益，除非显式重算）
func (s *ResolverService) UpdateAssignment(ctx context.Context, id int64, input *UpdateAssignmentInput) error {
	if _, err := s.domainRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("归属记录不存在")
	}

	fields := map[string]interface{}{}
	if input.OwnerID != nil {
		fields["owner_id"] = *input.OwnerID
	}
	if input.RevShare != nil {
		if !model.ValidRevShare(*input.RevShare) {
			return fmt.Errorf("分成比例必须在 0-100 之间: %.2f", *input.RevShare)
		}
		fields["rev_share"] = *input.RevShare
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}

	if len(fields) == 0 {
		return nil
	}
	if err := s.domainRepo.UpdateFields(ctx, id, fields); err != nil {
		return fmt.Errorf("更新归属失败: %w", err)
	}
	s.InvalidateCache()
	return nil
}

// ListAssignments 归属列表
func (s *ResolverService) ListAssignments(ctx context.Context, filter repository.DomainFilter) ([]model.DomainAssignment, int64, error) {
	return s.domainRepo.List(ctx, filter)
}

// ==================== 辅助函数 ====================

// normalizeDomain 域名统一小写、去空白和协议前缀
func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	return strings.TrimSuffix(domain, "/")
}
