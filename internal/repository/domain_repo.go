package repository

import (
	"context"
	"errors"

	"adrev_hub_v1_202508/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// DomainFilter 域名归属过滤条件
type DomainFilter struct {
	Network  string
	OwnerID  int64
	Domain   string
	Status   *int
	Page     int
	PageSize int
}

// ==================== DomainAssignmentRepository 域名归属仓库 ====================

// DomainAssignmentRepository 域名归属仓库接口
type DomainAssignmentRepository interface {
	Create(ctx context.Context, assignment *model.DomainAssignment) error
	// CreateIfAbsent 不存在则创建；返回是否新建
	CreateIfAbsent(ctx context.Context, assignment *model.DomainAssignment) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.DomainAssignment, error)
	// GetActive 获取 (domain, network) 的生效归属
	GetActive(ctx context.Context, domain, network string) (*model.DomainAssignment, error)
	List(ctx context.Context, filter DomainFilter) ([]model.DomainAssignment, int64, error)
	Update(ctx context.Context, assignment *model.DomainAssignment) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

type domainAssignmentRepository struct {
	db *gorm.DB
}

// NewDomainAssignmentRepository 创建域名归属仓库
func NewDomainAssignmentRepository(db *gorm.DB) DomainAssignmentRepository {
	return &domainAssignmentRepository{db: db}
}

func (r *domainAssignmentRepository) Create(ctx context.Context, assignment *model.DomainAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// CreateIfAbsent 同一 (domain, network) 已有记录（含停用）则不再创建
// 事务内查重+写入，保证自动发现幂等
func (r *domainAssignmentRepository) CreateIfAbsent(ctx context.Context, assignment *model.DomainAssignment) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.DomainAssignment
		err := tx.Where("domain = ? AND network = ?", assignment.Domain, assignment.Network).
			First(&existing).Error
		if err == nil {
			return nil // 已存在，保持原归属不动
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(assignment).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *domainAssignmentRepository) GetByID(ctx context.Context, id int64) (*model.DomainAssignment, error) {
	var assignment model.DomainAssignment
	err := r.db.WithContext(ctx).First(&assignment, id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *domainAssignmentRepository) GetActive(ctx context.Context, domain, network string) (*model.DomainAssignment, error) {
	var assignment model.DomainAssignment
	err := r.db.WithContext(ctx).
		Where("domain = ? AND network = ? AND status = ?", domain, network, model.AssignmentStatusActive).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *domainAssignmentRepository) List(ctx context.Context, filter DomainFilter) ([]model.DomainAssignment, int64, error) {
	var assignments []model.DomainAssignment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.DomainAssignment{})

	// 应用过滤条件
	if filter.Network != "" {
		db = db.Where("network = ?", filter.Network)
	}
	if filter.OwnerID > 0 {
		db = db.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Domain != "" {
		db = db.Where("domain LIKE ?", "%"+filter.Domain+"%")
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.Order("domain ASC, network ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&assignments).Error

	return assignments, total, err
}

func (r *domainAssignmentRepository) Update(ctx context.Context, assignment *model.DomainAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *domainAssignmentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.DomainAssignment{}).Where("id = ?", id).Updates(fields).Error
}
