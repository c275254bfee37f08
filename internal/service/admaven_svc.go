package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"adrev_hub_v1_202508/internal/model"

	"github.com/go-resty/resty/v2"
)

const adMavenBaseURL = "https://panel.ad-maven.com/api"

// ==================== AdMavenClient ====================

// AdMavenClient AdMaven 网络客户端
// 认证方式：key + timestamp + 对排序后查询串的 HMAC-SHA256 签名
type AdMavenClient struct {
	creds  *Credentials
	client *resty.Client
}

var _ NetworkClient = (*AdMavenClient)(nil)

// NewAdMavenClient 创建 AdMaven 客户端
func NewAdMavenClient(creds *Credentials) *AdMavenClient {
	client := resty.New().
		SetBaseURL(adMavenBaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 网络错误或上游瞬时错误才重试
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	return &AdMavenClient{
		creds:  creds,
		client: client,
	}
}

func (c *AdMavenClient) Network() string {
	return model.NetworkAdMaven
}

func (c *AdMavenClient) IsConfigured() bool {
	return c.creds != nil && c.creds.APIKey != "" && c.creds.APISecret != ""
}

// ==================== 数据拉取 ====================

// adMavenStatsResp 上游统计响应
// 上游按 (day, site, geo) 返回，geo 维度在归一化时合并掉
type adMavenStatsResp struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   []struct {
		Day         string `json:"day"`
		Site        string `json:"site"`
		Geo         string `json:"geo"`
		Revenue     string `json:"revenue"` // 上游返回字符串金额
		Impressions int64  `json:"impressions"`
		Clicks      int64  `json:"clicks"`
		Currency    string `json:"currency"`
	} `json:"data"`
}

func (c *AdMavenClient) GetRevenueData(ctx context.Context, start, end time.Time) ([]RevenueRow, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("AdMaven 凭证不完整")
	}

	params := url.Values{}
	params.Set("key", c.creds.APIKey)
	params.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	params.Set("group_by", "day,site,geo")
	params.Set("signature", c.sign(params))

	var result adMavenStatsResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&result).
		Get("/publisher/stats")
	if err != nil {
		return nil, fmt.Errorf("请求 AdMaven API 失败: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("AdMaven API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}
	if result.Error != "" {
		return nil, fmt.Errorf("AdMaven API 错误: %s", result.Error)
	}

	// geo 维度合并为 (day, site) 一行
	type rowKey struct {
		day  string
		site string
	}
	merged := make(map[rowKey]*RevenueRow)
	order := make([]rowKey, 0, len(result.Data))

	for _, d := range result.Data {
		date, err := time.ParseInLocation("2006-01-02", d.Day, time.UTC)
		if err != nil {
			continue // 跳过无法解析的行
		}
		revenue, _ := strconv.ParseFloat(d.Revenue, 64)

		key := rowKey{day: d.Day, site: d.Site}
		row, ok := merged[key]
		if !ok {
			currency := d.Currency
			if currency == "" {
				currency = "USD"
			}
			row = &RevenueRow{
				Date:     DateOnly(date),
				Domain:   strings.ToLower(d.Site),
				Currency: currency,
			}
			merged[key] = row
			order = append(order, key)
		}
		row.GrossRevenue += revenue
		row.Impressions += d.Impressions
		row.Clicks += d.Clicks
	}

	rows := make([]RevenueRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *merged[key])
	}
	return rows, nil
}

// ==================== 域名列表 ====================

type adMavenSitesResp struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   []struct {
		Site   string `json:"site"`
		Status string `json:"status"`
	} `json:"data"`
}

func (c *AdMavenClient) GetDomains(ctx context.Context) ([]string, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("AdMaven 凭证不完整")
	}

	params := url.Values{}
	params.Set("key", c.creds.APIKey)
	params.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("signature", c.sign(params))

	var result adMavenSitesResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetResult(&result).
		Get("/publisher/sites")
	if err != nil {
		return nil, fmt.Errorf("请求 AdMaven API 失败: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("AdMaven API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}
	if result.Error != "" {
		return nil, fmt.Errorf("AdMaven API 错误: %s", result.Error)
	}

	domains := make([]string, 0, len(result.Data))
	for _, d := range result.Data {
		if d.Site != "" {
			domains = append(domains, strings.ToLower(d.Site))
		}
	}
	return domains, nil
}

// ==================== 签名 ====================

// sign 对排序后的 key=value 串做 HMAC-SHA256
// 签名覆盖除 signature 外的全部参数
func (c *AdMavenClient) sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	payload := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(c.creds.APISecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
