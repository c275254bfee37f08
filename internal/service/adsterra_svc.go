package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adrev_hub_v1_202508/internal/model"

	"github.com/go-resty/resty/v2"
)

const adsterraBaseURL = "https://api3.adsterratools.com/publisher"

// ==================== AdsterraClient ====================

// AdsterraClient Adsterra 网络客户端
// 认证方式：Bearer Token
type AdsterraClient struct {
	creds  *Credentials
	client *resty.Client
}

var _ NetworkClient = (*AdsterraClient)(nil)

// NewAdsterraClient 创建 Adsterra 客户端
func NewAdsterraClient(creds *Credentials) *AdsterraClient {
	client := resty.New().
		SetBaseURL(adsterraBaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	if creds != nil && creds.APIToken != "" {
		client.SetAuthToken(creds.APIToken)
	}

	return &AdsterraClient{
		creds:  creds,
		client: client,
	}
}

func (c *AdsterraClient) Network() string {
	return model.NetworkAdsterra
}

func (c *AdsterraClient) IsConfigured() bool {
	return c.creds != nil && c.creds.APIToken != ""
}

// ==================== 数据拉取 ====================

// adsterraStatsResp 上游统计响应
// placement 维度在归一化时丢弃，同一 (date, domain) 的行做合并
type adsterraStatsResp struct {
	Message string `json:"message"`
	Items   []struct {
		Date       string  `json:"date"`
		Domain     string  `json:"domain"`
		Placement  string  `json:"placement"`
		Revenue    float64 `json:"revenue"`
		Impression int64   `json:"impression"` // 上游用单数
		Clicks     int64   `json:"clicks"`
	} `json:"items"`
}

func (c *AdsterraClient) GetRevenueData(ctx context.Context, start, end time.Time) ([]RevenueRow, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("Adsterra 凭证不完整")
	}

	var result adsterraStatsResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"start_date":  start.Format("2006-01-02"),
			"finish_date": end.Format("2006-01-02"),
			"group_by":    "date,domain",
		}).
		SetResult(&result).
		Get("/stats.json")
	if err != nil {
		return nil, fmt.Errorf("请求 Adsterra API 失败: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("Adsterra API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	type rowKey struct {
		date   string
		domain string
	}
	merged := make(map[rowKey]*RevenueRow)
	order := make([]rowKey, 0, len(result.Items))

	for _, item := range result.Items {
		date, err := time.ParseInLocation("2006-01-02", item.Date, time.UTC)
		if err != nil {
			continue
		}

		key := rowKey{date: item.Date, domain: item.Domain}
		row, ok := merged[key]
		if !ok {
			row = &RevenueRow{
				Date:     DateOnly(date),
				Domain:   strings.ToLower(item.Domain),
				Currency: "USD", // Adsterra 固定以美元结算
			}
			merged[key] = row
			order = append(order, key)
		}
		row.GrossRevenue += item.Revenue
		row.Impressions += item.Impression
		row.Clicks += item.Clicks
	}

	rows := make([]RevenueRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *merged[key])
	}
	return rows, nil
}

// ==================== 域名列表 ====================

type adsterraDomainsResp struct {
	Message string `json:"message"`
	Items   []struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Domain string `json:"domain"`
	} `json:"items"`
}

func (c *AdsterraClient) GetDomains(ctx context.Context) ([]string, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("Adsterra 凭证不完整")
	}

	var result adsterraDomainsResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/domains.json")
	if err != nil {
		return nil, fmt.Errorf("请求 Adsterra API 失败: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("Adsterra API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	domains := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Domain != "" {
			domains = append(domains, strings.ToLower(item.Domain))
		}
	}
	return domains, nil
}
