package service

import (
	"context"
	"testing"

	"adrev_hub_v1_202508/internal/config"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
)

// ==================== 测试辅助 ====================

func setupVaultTest(t *testing.T, cfg *config.VaultConfig) *VaultService {
	db := setupTestDB(t)
	if cfg == nil {
		cfg = &config.VaultConfig{EncryptionKey: "test-encryption-key"}
	}
	return NewVaultService(repository.NewNetworkAccountRepository(db), cfg)
}

// ==================== 凭证加解密 ====================

func TestVaultService_CredentialRoundTrip(t *testing.T) {
	vault := setupVaultTest(t, nil)
	ctx := context.Background()

	creds := &Credentials{APIKey: "my-key", APISecret: "my-secret"}
	account, err := vault.CreateAccount(ctx, model.NetworkAdMaven, "主账号", creds, true)
	if err != nil {
		t.Fatalf("创建账号失败: %v", err)
	}

	// 密文不等于明文
	if account.CredentialBlob == "" || account.CredentialBlob == "my-key" {
		t.Error("凭证应加密存储")
	}

	accounts, err := vault.GetActiveAccountsWithCredentials(ctx, model.NetworkAdMaven)
	if err != nil {
		t.Fatalf("取账号失败: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("账号数 = %d, want 1", len(accounts))
	}

	got := accounts[0].Credentials
	if got.APIKey != "my-key" || got.APISecret != "my-secret" {
		t.Errorf("解密后凭证不一致: %+v", got)
	}
	if got.Network != model.NetworkAdMaven {
		t.Errorf("network = %s, want %s", got.Network, model.NetworkAdMaven)
	}
	if accounts[0].AccountID == nil || *accounts[0].AccountID != account.ID {
		t.Error("数据库账号应带 AccountID")
	}
}

func TestVaultService_InvalidNetwork(t *testing.T) {
	vault := setupVaultTest(t, nil)

	_, err := vault.CreateAccount(context.Background(), "unknown", "x", &Credentials{}, false)
	if err == nil {
		t.Error("未知网络应返回错误")
	}
}

// ==================== 默认账号排序 ====================

func TestVaultService_DefaultAccountFirst(t *testing.T) {
	vault := setupVaultTest(t, nil)
	ctx := context.Background()

	if _, err := vault.CreateAccount(ctx, model.NetworkAdMaven, "first", &Credentials{APIKey: "a", APISecret: "a"}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := vault.CreateAccount(ctx, model.NetworkAdMaven, "second", &Credentials{APIKey: "b", APISecret: "b"}, true); err != nil {
		t.Fatal(err)
	}

	accounts, err := vault.GetActiveAccountsWithCredentials(ctx, model.NetworkAdMaven)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 {
		t.Fatalf("账号数 = %d, want 2", len(accounts))
	}
	// 默认账号排最前
	if accounts[0].Name != "second" {
		t.Errorf("第一个账号 = %s, want second", accounts[0].Name)
	}

	def, err := vault.GetDefaultAccount(ctx, model.NetworkAdMaven)
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != "second" {
		t.Errorf("默认账号 = %s, want second", def.Name)
	}
}

// ==================== 旧版环境凭证 ====================

func TestVaultService_LegacyEnvFallback(t *testing.T) {
	vault := setupVaultTest(t, &config.VaultConfig{
		EncryptionKey:    "test-encryption-key",
		AdMavenAPIKey:    "env-key",
		AdMavenAPISecret: "env-secret",
	})

	// 库里没有账号时合成环境级隐式账号
	accounts, err := vault.GetActiveAccountsWithCredentials(context.Background(), model.NetworkAdMaven)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 {
		t.Fatalf("账号数 = %d, want 1", len(accounts))
	}
	if accounts[0].AccountID != nil {
		t.Error("环境账号的 AccountID 应为 nil")
	}
	if accounts[0].Name != "Environment (legacy)" {
		t.Errorf("name = %s, want Environment (legacy)", accounts[0].Name)
	}
	if accounts[0].Credentials.APIKey != "env-key" {
		t.Errorf("api_key = %s, want env-key", accounts[0].Credentials.APIKey)
	}
	// 去重键里用占位 ID 0
	if accounts[0].DedupAccountID() != model.LegacyAccountID {
		t.Errorf("dedup id = %d, want %d", accounts[0].DedupAccountID(), model.LegacyAccountID)
	}
}

func TestVaultService_LegacyEnvIncomplete(t *testing.T) {
	vault := setupVaultTest(t, &config.VaultConfig{
		EncryptionKey: "test-encryption-key",
		AdMavenAPIKey: "env-key", // 缺 secret
	})

	accounts, err := vault.GetActiveAccountsWithCredentials(context.Background(), model.NetworkAdMaven)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 0 {
		t.Errorf("凭证不完整时不应合成账号, got %d", len(accounts))
	}
}

// ==================== 账号更新 ====================

func TestVaultService_UpdateAccount(t *testing.T) {
	vault := setupVaultTest(t, nil)
	ctx := context.Background()

	account, err := vault.CreateAccount(ctx, model.NetworkAdsterra, "旧名", &Credentials{APIToken: "old-token"}, false)
	if err != nil {
		t.Fatal(err)
	}

	newName := "新名"
	if err := vault.UpdateAccount(ctx, account.ID, &UpdateAccountInput{
		Name:        &newName,
		Credentials: &Credentials{APIToken: "new-token"},
	}); err != nil {
		t.Fatalf("更新账号失败: %v", err)
	}

	accounts, err := vault.GetActiveAccountsWithCredentials(ctx, model.NetworkAdsterra)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 {
		t.Fatalf("账号数 = %d, want 1", len(accounts))
	}
	if accounts[0].Name != "新名" {
		t.Errorf("name = %s, want 新名", accounts[0].Name)
	}
	if accounts[0].Credentials.APIToken != "new-token" {
		t.Errorf("token = %s, want new-token", accounts[0].Credentials.APIToken)
	}
}
