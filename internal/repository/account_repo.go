package repository

import (
	"context"

	"adrev_hub_v1_202508/internal/model"

	"gorm.io/gorm"
)

// ==================== NetworkAccountRepository 网络账号仓库 ====================

// NetworkAccountRepository 网络账号仓库接口
type NetworkAccountRepository interface {
	Create(ctx context.Context, account *model.NetworkAccount) error
	GetByID(ctx context.Context, id int64) (*model.NetworkAccount, error)
	ListActiveByNetwork(ctx context.Context, network string) ([]model.NetworkAccount, error)
	List(ctx context.Context) ([]model.NetworkAccount, error)
	Update(ctx context.Context, account *model.NetworkAccount) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	SetDefault(ctx context.Context, id int64) error
	MarkSyncResult(ctx context.Context, id int64, syncErr string) error
}

type networkAccountRepository struct {
	db *gorm.DB
}

// NewNetworkAccountRepository 创建网络账号仓库
func NewNetworkAccountRepository(db *gorm.DB) NetworkAccountRepository {
	return &networkAccountRepository{db: db}
}

func (r *networkAccountRepository) Create(ctx context.Context, account *model.NetworkAccount) error {
	// 设为默认账号时先清掉同网络其他默认位，单事务保证唯一
	if account.IsDefault {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&model.NetworkAccount{}).
				Where("network = ?", account.Network).
				Update("is_default", false).Error; err != nil {
				return err
			}
			return tx.Create(account).Error
		})
	}
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *networkAccountRepository) GetByID(ctx context.Context, id int64) (*model.NetworkAccount, error) {
	var account model.NetworkAccount
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListActiveByNetwork 默认账号优先，其次按创建时间
func (r *networkAccountRepository) ListActiveByNetwork(ctx context.Context, network string) ([]model.NetworkAccount, error) {
	var accounts []model.NetworkAccount
	err := r.db.WithContext(ctx).
		Where("network = ? AND status = ?", network, model.AccountStatusActive).
		Order("is_default DESC, created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *networkAccountRepository) List(ctx context.Context) ([]model.NetworkAccount, error) {
	var accounts []model.NetworkAccount
	err := r.db.WithContext(ctx).
		Order("network ASC, is_default DESC, created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *networkAccountRepository) Update(ctx context.Context, account *model.NetworkAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *networkAccountRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.NetworkAccount{}).Where("id = ?", id).Updates(fields).Error
}

// SetDefault 将账号设为所属网络的默认账号（事务内清除兄弟默认位）
func (r *networkAccountRepository) SetDefault(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account model.NetworkAccount
		if err := tx.First(&account, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.NetworkAccount{}).
			Where("network = ? AND id != ?", account.Network, id).
			Update("is_default", false).Error; err != nil {
			return err
		}

		return tx.Model(&model.NetworkAccount{}).
			Where("id = ?", id).
			Update("is_default", true).Error
	})
}

// MarkSyncResult 记录账号最近一次同步结果，syncErr 为空表示成功
func (r *networkAccountRepository) MarkSyncResult(ctx context.Context, id int64, syncErr string) error {
	return r.db.WithContext(ctx).Model(&model.NetworkAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_sync_at":    gorm.Expr("CURRENT_TIMESTAMP"),
			"last_sync_error": syncErr,
		}).Error
}
