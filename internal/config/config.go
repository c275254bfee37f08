package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 全局配置
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Vault  VaultConfig  `mapstructure:"vault"`
	Sync   SyncConfig   `mapstructure:"sync"`
	Limits LimitConfig  `mapstructure:"limits"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	Issuer          string        `mapstructure:"issuer"`
}

// VaultConfig 凭证加密与旧版环境变量凭证
type VaultConfig struct {
	// EncryptionKey 凭证加密密钥（任意长度，内部派生为 32 字节）
	EncryptionKey string `mapstructure:"encryption_key"`

	// 旧版单账号环境级凭证：某网络在库里没有账号时合成一个隐式账号
	AdMavenAPIKey    string `mapstructure:"admaven_api_key"`
	AdMavenAPISecret string `mapstructure:"admaven_api_secret"`
	AdsterraAPIToken string `mapstructure:"adsterra_api_token"`
}

// SyncConfig 同步配置
type SyncConfig struct {
	// WindowDays 每次同步回溯的天数
	WindowDays int `mapstructure:"window_days"`

	// FallbackOwnerID 未归属域名的兜底归属用户（特权同步时使用）
	// 0 表示未配置，此时未归属记录按错误计数
	FallbackOwnerID int64 `mapstructure:"fallback_owner_id"`

	// DefaultRevShare 域名自动发现时的默认分成比例
	DefaultRevShare float64 `mapstructure:"default_rev_share"`

	// CronSpec 定时全量同步表达式（robfig/cron，带秒）
	CronSpec string `mapstructure:"cron_spec"`
}

// LimitConfig 限流配置
type LimitConfig struct {
	AuthPerWindow  int           `mapstructure:"auth_per_window"`  // 认证接口：每 IP 每窗口
	AuthWindow     time.Duration `mapstructure:"auth_window"`      //
	SyncPerWindow  int           `mapstructure:"sync_per_window"`  // 同步接口：每 IP 每窗口
	SyncWindow     time.Duration `mapstructure:"sync_window"`      //
	ApiKeyFallback int           `mapstructure:"apikey_fallback"`  // 密钥未配置上限时的默认值
}

// ==================== 加载 ====================

// Load 加载配置
// 优先级：环境变量 > config.yaml > 默认值
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("ADREV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件也可以只靠环境变量跑
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		log.Println("[Config] 未找到 config.yaml，使用环境变量与默认值")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if cfg.Vault.EncryptionKey == "" {
		return nil, fmt.Errorf("vault.encryption_key 未配置，凭证无法加密存储")
	}

	return &cfg, nil
}

// setDefaults 默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("db.dsn", "host=localhost user=adrev password=adrev dbname=adrev_hub port=5432 sslmode=disable")

	v.SetDefault("jwt.secret", "adrev-hub-secret-change-in-production")
	v.SetDefault("jwt.access_token_ttl", 2*time.Hour)
	v.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "adrev-hub")

	v.SetDefault("sync.window_days", 31)
	v.SetDefault("sync.fallback_owner_id", 0)
	v.SetDefault("sync.default_rev_share", 80)
	v.SetDefault("sync.cron_spec", "0 30 6 * * *") // 每天 06:30

	v.SetDefault("limits.auth_per_window", 10)
	v.SetDefault("limits.auth_window", 15*time.Minute)
	v.SetDefault("limits.sync_per_window", 5)
	v.SetDefault("limits.sync_window", time.Hour)
	v.SetDefault("limits.apikey_fallback", 1000)
}
