package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// ==================== 客户端注册表 ====================

func TestNewNetworkClient(t *testing.T) {
	creds := &Credentials{APIKey: "k", APISecret: "s", APIToken: "t"}

	admaven, err := NewNetworkClient("admaven", creds)
	if err != nil {
		t.Fatal(err)
	}
	if admaven.Network() != "admaven" {
		t.Errorf("network = %s, want admaven", admaven.Network())
	}

	adsterra, err := NewNetworkClient("adsterra", creds)
	if err != nil {
		t.Fatal(err)
	}
	if adsterra.Network() != "adsterra" {
		t.Errorf("network = %s, want adsterra", adsterra.Network())
	}

	if _, err := NewNetworkClient("unknown", creds); err == nil {
		t.Error("未注册网络应返回错误")
	}
}

func TestClientIsConfigured(t *testing.T) {
	cases := []struct {
		name    string
		network string
		creds   *Credentials
		want    bool
	}{
		{"admaven 齐全", "admaven", &Credentials{APIKey: "k", APISecret: "s"}, true},
		{"admaven 缺 secret", "admaven", &Credentials{APIKey: "k"}, false},
		{"admaven 空凭证", "admaven", nil, false},
		{"adsterra 齐全", "adsterra", &Credentials{APIToken: "t"}, true},
		{"adsterra 缺 token", "adsterra", &Credentials{}, false},
	}

	for _, tc := range cases {
		client, err := NewNetworkClient(tc.network, tc.creds)
		if err != nil {
			t.Fatal(err)
		}
		if got := client.IsConfigured(); got != tc.want {
			t.Errorf("%s: IsConfigured = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// ==================== AdMaven 签名 ====================

func TestAdMavenClient_Sign(t *testing.T) {
	client := NewAdMavenClient(&Credentials{APIKey: "key", APISecret: "secret"})

	params := url.Values{}
	params.Set("key", "key")
	params.Set("timestamp", "1735689600")
	params.Set("start_date", "2025-01-01")

	// 签名 = HMAC-SHA256(按 key 排序的 k=v 串)
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("key=key&start_date=2025-01-01&timestamp=1735689600"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := client.sign(params); got != want {
		t.Errorf("sign = %s, want %s", got, want)
	}

	// signature 自身不参与签名
	params.Set("signature", "whatever")
	if got := client.sign(params); got != want {
		t.Errorf("含 signature 参数时 sign = %s, want %s", got, want)
	}
}

// ==================== AdMaven 归一化 ====================

func TestAdMavenClient_GetRevenueDataMergesGeo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/publisher/stats" {
			http.NotFound(w, r)
			return
		}
		// 必须带齐签名参数
		for _, p := range []string{"key", "timestamp", "signature", "start_date", "end_date"} {
			if r.URL.Query().Get(p) == "" {
				t.Errorf("缺少查询参数 %s", p)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"data": [
				{"day": "2025-01-01", "site": "X.COM", "geo": "US", "revenue": "60.5", "impressions": 600, "clicks": 6, "currency": "USD"},
				{"day": "2025-01-01", "site": "X.COM", "geo": "DE", "revenue": "39.5", "impressions": 400, "clicks": 4, "currency": "USD"},
				{"day": "2025-01-02", "site": "y.com", "geo": "US", "revenue": "10", "impressions": 100, "clicks": 1, "currency": "USD"},
				{"day": "bad-date", "site": "z.com", "geo": "US", "revenue": "1", "impressions": 1, "clicks": 0, "currency": "USD"}
			]
		}`))
	}))
	defer server.Close()

	client := NewAdMavenClient(&Credentials{APIKey: "k", APISecret: "s"})
	client.client.SetBaseURL(server.URL)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := client.GetRevenueData(context.Background(), start, start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("拉取失败: %v", err)
	}

	// geo 维度合并，非法日期行丢弃
	if len(rows) != 2 {
		t.Fatalf("行数 = %d, want 2", len(rows))
	}

	// 同 (day, site) 的两条 geo 行合并为一行，域名统一小写
	if rows[0].Domain != "x.com" || rows[0].GrossRevenue != 100.0 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[0].Impressions != 1000 || rows[0].Clicks != 10 {
		t.Errorf("rows[0] 计数 = %+v", rows[0])
	}
	if rows[1].Domain != "y.com" || rows[1].GrossRevenue != 10 {
		t.Errorf("rows[1] = %+v", rows[1])
	}
}

func TestAdMavenClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "error": "invalid signature"}`))
	}))
	defer server.Close()

	client := NewAdMavenClient(&Credentials{APIKey: "k", APISecret: "s"})
	client.client.SetBaseURL(server.URL)

	if _, err := client.GetRevenueData(context.Background(), time.Now(), time.Now()); err == nil {
		t.Error("上游业务错误应返回 error")
	}
}

// ==================== Adsterra 归一化 ====================

func TestAdsterraClient_GetRevenueDataMergesPlacements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats.json" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("Authorization = %s", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"message": "ok",
			"items": [
				{"date": "2025-01-01", "domain": "x.com", "placement": "banner", "revenue": 30, "impression": 300, "clicks": 3},
				{"date": "2025-01-01", "domain": "x.com", "placement": "popup", "revenue": 50, "impression": 700, "clicks": 7}
			]
		}`))
	}))
	defer server.Close()

	client := NewAdsterraClient(&Credentials{APIToken: "token-1"})
	client.client.SetBaseURL(server.URL)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := client.GetRevenueData(context.Background(), start, start)
	if err != nil {
		t.Fatalf("拉取失败: %v", err)
	}

	// placement 维度合并为一行，币种固定 USD
	if len(rows) != 1 {
		t.Fatalf("行数 = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.GrossRevenue != 80 || row.Impressions != 1000 || row.Clicks != 10 {
		t.Errorf("row = %+v", row)
	}
	if row.Currency != "USD" {
		t.Errorf("currency = %s, want USD", row.Currency)
	}
}

func TestAdsterraClient_GetDomains(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "ok", "items": [{"id": 1, "title": "X", "domain": "X.com"}, {"id": 2, "title": "空", "domain": ""}]}`))
	}))
	defer server.Close()

	client := NewAdsterraClient(&Credentials{APIToken: "t"})
	client.client.SetBaseURL(server.URL)

	domains, err := client.GetDomains(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(domains) != 1 || domains[0] != "x.com" {
		t.Errorf("domains = %v", domains)
	}
}
