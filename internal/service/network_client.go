package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adrev_hub_v1_202508/internal/model"
)

// ==================== 凭证结构 ====================

// Credentials 各网络凭证的带标签联合
// 只在 Vault 边界解密得到，不向下游传递密文
type Credentials struct {
	Network string `json:"network"`

	// AdMaven：签名请求
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`

	// Adsterra：Bearer Token
	APIToken string `json:"api_token,omitempty"`
}

// Marshal 序列化为明文 JSON（加密前的内容）
func (c *Credentials) Marshal() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseCredentials 从明文 JSON 反解
func ParseCredentials(s string) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(s), &creds); err != nil {
		return nil, fmt.Errorf("凭证格式错误: %w", err)
	}
	return &creds, nil
}

// ==================== 统一数据结构 ====================

// RevenueRow 归一化后的收益行（跨网络通用）
type RevenueRow struct {
	Date         time.Time `json:"date"`
	Domain       string    `json:"domain"`
	GrossRevenue float64   `json:"gross_revenue"`
	Impressions  int64     `json:"impressions"`
	Clicks       int64     `json:"clicks"`
	Currency     string    `json:"currency"`
}

// ==================== NetworkClient 接口 ====================

// NetworkClient 广告网络客户端
// 每个网络一个实现：自带认证方式和字段映射，向外只暴露归一化行
type NetworkClient interface {
	// Network 网络标识
	Network() string

	// IsConfigured 凭证是否齐全
	IsConfigured() bool

	// GetRevenueData 拉取 [start, end] 区间的收益数据
	GetRevenueData(ctx context.Context, start, end time.Time) ([]RevenueRow, error)

	// GetDomains 拉取该账号名下的域名列表（用于自动发现）
	GetDomains(ctx context.Context) ([]string, error)
}

// ==================== 客户端注册表 ====================

// clientFactory 网络 → 客户端构造器
// 新增网络只需注册一个构造器，同步引擎不用改
type clientFactory func(creds *Credentials) NetworkClient

var clientRegistry = map[string]clientFactory{
	model.NetworkAdMaven:  func(c *Credentials) NetworkClient { return NewAdMavenClient(c) },
	model.NetworkAdsterra: func(c *Credentials) NetworkClient { return NewAdsterraClient(c) },
}

// NewNetworkClient 根据网络标识构建客户端
func NewNetworkClient(network string, creds *Credentials) (NetworkClient, error) {
	factory, ok := clientRegistry[network]
	if !ok {
		return nil, fmt.Errorf("不支持的网络: %s", network)
	}
	return factory(creds), nil
}

// ==================== 日期工具 ====================

// DateOnly 归一化为 UTC 零点，作为 date 列和去重键使用
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
