package service

import (
	"context"
	"fmt"
	"log"

	"adrev_hub_v1_202508/internal/config"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/pkg/utils"
)

// ==================== VaultService 凭证保管 ====================

// AccountCredentials 解密后的账号凭证
// AccountID 为 nil 表示环境变量合成的隐式账号
type AccountCredentials struct {
	AccountID   *int64
	Name        string
	Credentials *Credentials
}

// DedupAccountID 该账号在收益去重键中的 ID
func (a *AccountCredentials) DedupAccountID() int64 {
	if a.AccountID == nil {
		return model.LegacyAccountID
	}
	return *a.AccountID
}

// VaultService 网络账号与凭证管理
// 凭证只在这里加解密，密文不出本层
type VaultService struct {
	accountRepo repository.NetworkAccountRepository
	cfg         *config.VaultConfig
	key         []byte
}

// NewVaultService 创建凭证服务
func NewVaultService(accountRepo repository.NetworkAccountRepository, cfg *config.VaultConfig) *VaultService {
	return &VaultService{
		accountRepo: accountRepo,
		cfg:         cfg,
		key:         utils.DeriveKey(cfg.EncryptionKey),
	}
}

// ==================== 账号管理 ====================

// CreateAccount 创建网络账号（管理员操作，同步流程绝不隐式建号）
func (s *VaultService) CreateAccount(ctx context.Context, network, name string, creds *Credentials, isDefault bool) (*model.NetworkAccount, error) {
	if !model.IsValidNetwork(network) {
		return nil, fmt.Errorf("不支持的网络: %s", network)
	}
	if name == "" {
		return nil, fmt.Errorf("账号名称不能为空")
	}

	creds.Network = network
	blob, err := s.encryptCredentials(creds)
	if err != nil {
		return nil, err
	}

	account := &model.NetworkAccount{
		Network:        network,
		Name:           name,
		CredentialBlob: blob,
		IsDefault:      isDefault,
		Status:         model.AccountStatusActive,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("创建账号失败: %w", err)
	}
	return account, nil
}

// UpdateAccountInput 账号部分更新
type UpdateAccountInput struct {
	Name        *string
	Credentials *Credentials
	Status      *int
	IsDefault   *bool
}

// UpdateAccount 部分更新账号
func (s *VaultService) UpdateAccount(ctx context.Context, id int64, input *UpdateAccountInput) error {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("账号不存在")
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Credentials != nil {
		input.Credentials.Network = account.Network
		blob, err := s.encryptCredentials(input.Credentials)
		if err != nil {
			return err
		}
		fields["credential_blob"] = blob
	}

	if len(fields) > 0 {
		if err := s.accountRepo.UpdateFields(ctx, id, fields); err != nil {
			return fmt.Errorf("更新账号失败: %w", err)
		}
	}

	// 默认位切换走事务接口，保证同网络唯一
	if input.IsDefault != nil && *input.IsDefault {
		if err := s.accountRepo.SetDefault(ctx, id); err != nil {
			return fmt.Errorf("设置默认账号失败: %w", err)
		}
	}

	return nil
}

// ListAccounts 账号列表（不含凭证明文）
func (s *VaultService) ListAccounts(ctx context.Context) ([]model.NetworkAccount, error) {
	return s.accountRepo.List(ctx)
}

// ==================== 凭证取用 ====================

// GetActiveAccountsWithCredentials 某网络全部可用账号及解密凭证
// 默认账号排在最前；解不开的记录跳过并告警，不影响其余账号；
// 库里一个账号都没有时，退回旧版环境变量凭证合成一个隐式账号
func (s *VaultService) GetActiveAccountsWithCredentials(ctx context.Context, network string) ([]AccountCredentials, error) {
	accounts, err := s.accountRepo.ListActiveByNetwork(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("查询账号列表失败: %w", err)
	}

	result := make([]AccountCredentials, 0, len(accounts))
	for i := range accounts {
		account := accounts[i]
		creds, err := s.decryptCredentials(account.CredentialBlob)
		if err != nil {
			log.Printf("[Vault] 账号 %d (%s) 凭证解密失败，已跳过: %v", account.ID, account.Name, err)
			continue
		}
		id := account.ID
		result = append(result, AccountCredentials{
			AccountID:   &id,
			Name:        account.Name,
			Credentials: creds,
		})
	}

	// 零账号时合成旧版环境级账号，下游拿到的列表形态保持一致
	if len(accounts) == 0 {
		if legacy := s.legacyEnvCredentials(network); legacy != nil {
			result = append(result, AccountCredentials{
				AccountID:   nil,
				Name:        "Environment (legacy)",
				Credentials: legacy,
			})
		}
	}

	return result, nil
}

// GetDefaultAccount 某网络的默认账号；没有默认位则回退最早创建的可用账号
func (s *VaultService) GetDefaultAccount(ctx context.Context, network string) (*AccountCredentials, error) {
	accounts, err := s.GetActiveAccountsWithCredentials(ctx, network)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("网络 %s 没有可用账号", network)
	}
	// 列表已按 默认优先+创建时间 排序，取第一个即可
	return &accounts[0], nil
}

// ==================== 内部方法 ====================

func (s *VaultService) encryptCredentials(creds *Credentials) (string, error) {
	plain, err := creds.Marshal()
	if err != nil {
		return "", fmt.Errorf("序列化凭证失败: %w", err)
	}
	blob, err := utils.EncryptString(s.key, plain)
	if err != nil {
		return "", fmt.Errorf("加密凭证失败: %w", err)
	}
	return blob, nil
}

func (s *VaultService) decryptCredentials(blob string) (*Credentials, error) {
	plain, err := utils.DecryptString(s.key, blob)
	if err != nil {
		return nil, err
	}
	return ParseCredentials(plain)
}

// legacyEnvCredentials 旧版环境变量凭证；不完整则返回 nil
func (s *VaultService) legacyEnvCredentials(network string) *Credentials {
	switch network {
	case model.NetworkAdMaven:
		if s.cfg.AdMavenAPIKey != "" && s.cfg.AdMavenAPISecret != "" {
			return &Credentials{
				Network:   network,
				APIKey:    s.cfg.AdMavenAPIKey,
				APISecret: s.cfg.AdMavenAPISecret,
			}
		}
	case model.NetworkAdsterra:
		if s.cfg.AdsterraAPIToken != "" {
			return &Credentials{
				Network:  network,
				APIToken: s.cfg.AdsterraAPIToken,
			}
		}
	}
	return nil
}
