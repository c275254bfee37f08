package service

import (
	"context"
	"errors"
	"testing"

	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"

	"gorm.io/gorm"
)

// ==================== 测试辅助 ====================

func setupResolverTest(t *testing.T) (*ResolverService, *gorm.DB) {
	db := setupTestDB(t)
	return NewResolverService(repository.NewDomainAssignmentRepository(db)), db
}

// ==================== 归属解析 ====================

func TestResolverService_ResolveOwner(t *testing.T) {
	resolver, db := setupResolverTest(t)
	ctx := context.Background()

	db.Create(&model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 7, RevShare: 75, Status: model.AssignmentStatusActive,
	})

	ownership, err := resolver.ResolveOwner(ctx, "x.com", model.NetworkAdMaven)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if ownership.OwnerID != 7 || ownership.RevShare != 75 {
		t.Errorf("ownership = %+v, want {7 75}", ownership)
	}

	// 严格按 (domain, network)：另一个网络下没有归属
	if _, err := resolver.ResolveOwner(ctx, "x.com", model.NetworkAdsterra); !errors.Is(err, ErrOwnerNotFound) {
		t.Errorf("跨网络解析 err = %v, want ErrOwnerNotFound", err)
	}
}

func TestResolverService_ResolveNormalizesDomain(t *testing.T) {
	resolver, db := setupResolverTest(t)

	db.Create(&model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 7, RevShare: 80, Status: model.AssignmentStatusActive,
	})

	// 大小写、协议前缀、www、尾斜杠都归一化
	for _, input := range []string{"X.COM", "https://x.com", "http://www.x.com/", "www.x.com"} {
		ownership, err := resolver.ResolveOwner(context.Background(), input, model.NetworkAdMaven)
		if err != nil {
			t.Errorf("解析 %q 失败: %v", input, err)
			continue
		}
		if ownership.OwnerID != 7 {
			t.Errorf("解析 %q: owner = %d, want 7", input, ownership.OwnerID)
		}
	}
}

func TestResolverService_InactiveAssignment(t *testing.T) {
	resolver, db := setupResolverTest(t)

	db.Create(&model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 7, RevShare: 80, Status: model.AssignmentStatusInactive,
	})

	// 停用的归属视同不存在
	if _, err := resolver.ResolveOwner(context.Background(), "x.com", model.NetworkAdMaven); !errors.Is(err, ErrOwnerNotFound) {
		t.Errorf("err = %v, want ErrOwnerNotFound", err)
	}
}

func TestResolverService_CacheInvalidation(t *testing.T) {
	resolver, db := setupResolverTest(t)
	ctx := context.Background()

	// 先查一次未归属，落负缓存
	if _, err := resolver.ResolveOwner(ctx, "x.com", model.NetworkAdMaven); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("err = %v, want ErrOwnerNotFound", err)
	}

	db.Create(&model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 7, RevShare: 80, Status: model.AssignmentStatusActive,
	})

	// 负缓存还在
	if _, err := resolver.ResolveOwner(ctx, "x.com", model.NetworkAdMaven); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("负缓存未生效: %v", err)
	}

	resolver.InvalidateCache()
	ownership, err := resolver.ResolveOwner(ctx, "x.com", model.NetworkAdMaven)
	if err != nil {
		t.Fatalf("清缓存后解析失败: %v", err)
	}
	if ownership.OwnerID != 7 {
		t.Errorf("owner = %d, want 7", ownership.OwnerID)
	}
}

// ==================== 自动发现 ====================

func TestResolverService_DiscoverAndAssign(t *testing.T) {
	resolver, db := setupResolverTest(t)
	ctx := context.Background()

	// 已有归属的域名不动
	db.Create(&model.DomainAssignment{
		Domain: "existing.com", Network: model.NetworkAdMaven,
		OwnerID: 5, RevShare: 60, Status: model.AssignmentStatusActive,
	})

	domains := []string{"new1.com", "https://www.New2.com/", "existing.com", "new1.com"}
	result, err := resolver.DiscoverAndAssign(ctx, domains, model.NetworkAdMaven, 80, 1)
	if err != nil {
		t.Fatalf("发现失败: %v", err)
	}

	// 去重后 3 个域名：2 新建 1 已存在
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}
	if result.Existing != 1 {
		t.Errorf("existing = %d, want 1", result.Existing)
	}

	// 已有归属保持原样
	var existing model.DomainAssignment
	db.Where("domain = ?", "existing.com").First(&existing)
	if existing.OwnerID != 5 || existing.RevShare != 60 {
		t.Errorf("已有归属被改动: %+v", existing)
	}

	// 重复执行结果不变
	again, err := resolver.DiscoverAndAssign(ctx, domains, model.NetworkAdMaven, 80, 1)
	if err != nil {
		t.Fatal(err)
	}
	if again.Created != 0 || again.Existing != 3 {
		t.Errorf("重复执行: created = %d, existing = %d, want 0, 3", again.Created, again.Existing)
	}
}

func TestResolverService_DiscoverInvalidRevShare(t *testing.T) {
	resolver, _ := setupResolverTest(t)

	if _, err := resolver.DiscoverAndAssign(context.Background(), []string{"x.com"}, model.NetworkAdMaven, 150, 1); err == nil {
		t.Error("分成超出 0-100 应返回错误")
	}
}

// ==================== 归属维护 ====================

func TestDomainAssignment_StoreUniqueKey(t *testing.T) {
	_, db := setupResolverTest(t)

	if err := db.Create(&model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 1, RevShare: 80, Status: model.AssignmentStatusActive,
	}).Error; err != nil {
		t.Fatalf("首条写入失败: %v", err)
	}

	// (domain, network) 唯一键在库层兜底，绕过服务层直写也拒绝
	err := db.Create(&model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 2, RevShare: 70, Status: model.AssignmentStatusActive,
	}).Error
	if err == nil {
		t.Error("同 (domain, network) 直写应被唯一键拒绝")
	}

	// 换网络不受影响
	if err := db.Create(&model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdsterra,
		OwnerID: 2, RevShare: 70, Status: model.AssignmentStatusActive,
	}).Error; err != nil {
		t.Errorf("跨网络同域名应允许: %v", err)
	}
}

func TestResolverService_CreateAssignmentDuplicate(t *testing.T) {
	resolver, _ := setupResolverTest(t)
	ctx := context.Background()

	first := &model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 1, RevShare: 80, Status: model.AssignmentStatusActive,
	}
	if err := resolver.CreateAssignment(ctx, first); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}

	dup := &model.DomainAssignment{
		Domain: "X.COM", Network: model.NetworkAdMaven,
		OwnerID: 2, RevShare: 70, Status: model.AssignmentStatusActive,
	}
	if err := resolver.CreateAssignment(ctx, dup); err == nil {
		t.Error("同 (domain, network) 重复创建应返回错误")
	}
}

func TestResolverService_UpdateAssignment(t *testing.T) {
	resolver, db := setupResolverTest(t)
	ctx := context.Background()

	assignment := &model.DomainAssignment{
		Domain: "x.com", Network: model.NetworkAdMaven,
		OwnerID: 1, RevShare: 80, Status: model.AssignmentStatusActive,
	}
	db.Create(assignment)

	newOwner := int64(2)
	newShare := 70.0
	if err := resolver.UpdateAssignment(ctx, assignment.ID, &UpdateAssignmentInput{
		OwnerID:  &newOwner,
		RevShare: &newShare,
	}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	ownership, err := resolver.ResolveOwner(ctx, "x.com", model.NetworkAdMaven)
	if err != nil {
		t.Fatal(err)
	}
	if ownership.OwnerID != 2 || ownership.RevShare != 70 {
		t.Errorf("ownership = %+v, want {2 70}", ownership)
	}

	badShare := 120.0
	if err := resolver.UpdateAssignment(ctx, assignment.ID, &UpdateAssignmentInput{RevShare: &badShare}); err == nil {
		t.Error("非法分成应返回错误")
	}
}
