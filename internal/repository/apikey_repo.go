package repository

import (
	"context"
	"time"

	"adrev_hub_v1_202508/internal/model"

	"gorm.io/gorm"
)

// ==================== ApiKeyRepository 密钥仓库 ====================

// ApiKeyRepository 报表密钥仓库接口
type ApiKeyRepository interface {
	Create(ctx context.Context, key *model.ApiKey) error
	GetByID(ctx context.Context, id int64) (*model.ApiKey, error)
	GetByHash(ctx context.Context, keyHash string) (*model.ApiKey, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.ApiKey, error)
	List(ctx context.Context) ([]model.ApiKey, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	// TouchUsage 使用计数 +1 并记录最后使用时间
	TouchUsage(ctx context.Context, id int64) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository 创建密钥仓库
func NewApiKeyRepository(db *gorm.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) Create(ctx context.Context, key *model.ApiKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepository) GetByID(ctx context.Context, id int64) (*model.ApiKey, error) {
	var key model.ApiKey
	err := r.db.WithContext(ctx).First(&key, id).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepository) GetByHash(ctx context.Context, keyHash string) (*model.ApiKey, error) {
	var key model.ApiKey
	err := r.db.WithContext(ctx).Where("key_hash = ?", keyHash).First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.ApiKey, error) {
	var keys []model.ApiKey
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}

func (r *apiKeyRepository) List(ctx context.Context) ([]model.ApiKey, error) {
	var keys []model.ApiKey
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&keys).Error
	return keys, err
}

func (r *apiKeyRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.ApiKey{}).Where("id = ?", id).Updates(fields).Error
}

func (r *apiKeyRepository) TouchUsage(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ApiKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": now,
		}).Error
}
