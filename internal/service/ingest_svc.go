package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"adrev_hub_v1_202508/internal/config"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 同步参数与结果 ====================

// SyncOptions 一次网络同步的参数
type SyncOptions struct {
	Network    string
	CallerID   int64
	Privileged bool

	// FilterByAssignedDomains 非特权同步时跳过不属于调用者的域名
	FilterByAssignedDomains bool

	// AccountID 只同步指定账号（可选）
	AccountID *int64

	// Domain 只同步指定域名（可选）
	Domain string

	// WindowDays 回溯天数，0 使用配置默认值
	WindowDays int
}

// AccountSyncResult 单账号同步明细
type AccountSyncResult struct {
	AccountID   *int64 `json:"account_id"`
	AccountName string `json:"account_name"`
	Fetched     int    `json:"fetched"`
	Saved       int    `json:"saved"`
	Updated     int    `json:"updated"`
	Skipped     int    `json:"skipped"`
	Errors      int    `json:"errors"`
	Error       string `json:"error,omitempty"`
}

// SyncTotals 全部账号的合计
type SyncTotals struct {
	Fetched int `json:"fetched"`
	Saved   int `json:"saved"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// SyncResult 一次网络同步的完整结果
// 单账号失败不影响整体返回，调用方按账号明细决定重试
type SyncResult struct {
	Success  bool                `json:"success"`
	Network  string              `json:"network"`
	Accounts []AccountSyncResult `json:"accounts"`
	Sync     SyncTotals          `json:"sync"`
	Overview *RebuildResult      `json:"overview,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// ==================== IngestService 同步引擎 ====================

// IngestService 收益同步引擎
// 流程：取账号 → 逐账号拉数据 → 归属解析 → 容差入库 → 重算汇总
// 同一网络内账号严格串行；不同网络可由任务层并发
type IngestService struct {
	vault       *VaultService
	resolver    *ResolverService
	revenueRepo repository.RevenueRecordRepository
	accountRepo repository.NetworkAccountRepository
	overview    *OverviewService
	cfg         *config.SyncConfig

	// newClient 客户端构造器，测试时注入替身
	newClient func(network string, creds *Credentials) (NetworkClient, error)
}

// NewIngestService 创建同步引擎
func NewIngestService(
	vault *VaultService,
	resolver *ResolverService,
	revenueRepo repository.RevenueRecordRepository,
	accountRepo repository.NetworkAccountRepository,
	overview *OverviewService,
	cfg *config.SyncConfig,
) *IngestService {
	return &IngestService{
		vault:       vault,
		resolver:    resolver,
		revenueRepo: revenueRepo,
		accountRepo: accountRepo,
		overview:    overview,
		cfg:         cfg,
		newClient:   NewNetworkClient,
	}
}

// SetClientFactory 注入客户端构造器（测试用）
func (s *IngestService) SetClientFactory(factory func(network string, creds *Credentials) (NetworkClient, error)) {
	s.newClient = factory
}

// ==================== 网络同步 ====================

// SyncNetwork 同步一个网络的全部可用账号
func (s *IngestService) SyncNetwork(ctx context.Context, opts *SyncOptions) (*SyncResult, error) {
	if !model.IsValidNetwork(opts.Network) {
		return nil, fmt.Errorf("不支持的网络: %s", opts.Network)
	}

	result := &SyncResult{Network: opts.Network}

	accounts, err := s.vault.GetActiveAccountsWithCredentials(ctx, opts.Network)
	if err != nil {
		return nil, fmt.Errorf("获取账号列表失败: %w", err)
	}

	// 指定账号时只处理那一个
	if opts.AccountID != nil {
		filtered := accounts[:0]
		for _, a := range accounts {
			if a.AccountID != nil && *a.AccountID == *opts.AccountID {
				filtered = append(filtered, a)
			}
		}
		accounts = filtered
	}

	// 无可用凭证：显式报告，不静默跳过
	if len(accounts) == 0 {
		result.Success = false
		result.Error = fmt.Sprintf("网络 %s 没有可用凭证", opts.Network)
		return result, nil
	}

	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	// 闭区间 [start, end]，含今天共 windowDays 天
	end := DateOnly(time.Now().UTC())
	start := end.AddDate(0, 0, -(windowDays - 1))

	// 同网络账号串行处理，账号出错记下来继续下一个
	for _, account := range accounts {
		accResult := s.syncAccount(ctx, opts, &account, start, end)
		result.Accounts = append(result.Accounts, *accResult)

		result.Sync.Fetched += accResult.Fetched
		result.Sync.Saved += accResult.Saved
		result.Sync.Updated += accResult.Updated
		result.Sync.Skipped += accResult.Skipped
		result.Sync.Errors += accResult.Errors

		// 数据库账号留档最近同步结果
		if account.AccountID != nil {
			if err := s.accountRepo.MarkSyncResult(ctx, *account.AccountID, accResult.Error); err != nil {
				log.Printf("[Ingest] 记录账号 %d 同步状态失败: %v", *account.AccountID, err)
			}
		}
	}

	result.Success = result.Sync.Saved+result.Sync.Updated > 0 || result.Sync.Errors == 0

	// 同步完成后重算汇总：特权触发重算全量，否则只算调用者范围
	var scope *int64
	if !opts.Privileged {
		scope = &opts.CallerID
	}
	overview, err := s.overview.Rebuild(ctx, scope)
	if err != nil {
		log.Printf("[Ingest] 重算汇总失败: %v", err)
		result.Overview = &RebuildResult{Errors: 1}
	} else {
		result.Overview = overview
	}

	return result, nil
}

// ==================== 单账号同步 ====================

// syncAccount 同步一个账号；任何失败只影响本账号的计数
func (s *IngestService) syncAccount(ctx context.Context, opts *SyncOptions, account *AccountCredentials, start, end time.Time) *AccountSyncResult {
	result := &AccountSyncResult{
		AccountID:   account.AccountID,
		AccountName: account.Name,
	}

	client, err := s.newClient(opts.Network, account.Credentials)
	if err != nil {
		result.Error = err.Error()
		result.Errors++
		return result
	}
	if !client.IsConfigured() {
		result.Error = fmt.Sprintf("账号 %s 凭证不完整", account.Name)
		result.Errors++
		return result
	}

	rows, err := client.GetRevenueData(ctx, start, end)
	if err != nil {
		result.Error = fmt.Sprintf("拉取数据失败: %v", err)
		result.Errors++
		return result
	}

	for _, row := range rows {
		// 指定域名同步时过滤其余行
		if opts.Domain != "" && row.Domain != normalizeDomain(opts.Domain) {
			continue
		}
		result.Fetched++

		status, err := s.ingestRow(ctx, opts, account.DedupAccountID(), &row)
		if err != nil {
			log.Printf("[Ingest] 入库失败 (%s %s): %v", row.Date.Format("2006-01-02"), row.Domain, err)
			result.Errors++
			continue
		}

		switch status {
		case ingestSaved:
			result.Saved++
		case ingestUpdated:
			result.Updated++
		case ingestSkipped:
			result.Skipped++
		}
	}

	return result
}

// ==================== 单行入库 ====================

type ingestStatus int

const (
	ingestSaved ingestStatus = iota
	ingestUpdated
	ingestSkipped
)

// errUnattributed 未归属且无处兜底
var errUnattributed = errors.New("域名未归属且未配置兜底归属")

// ingestRow 归属解析 + 容差幂等写入
func (s *IngestService) ingestRow(ctx context.Context, opts *SyncOptions, accountID int64, row *RevenueRow) (ingestStatus, error) {
	ownership, err := s.resolver.ResolveOwner(ctx, row.Domain, opts.Network)
	if errors.Is(err, ErrOwnerNotFound) {
		// 非特权且只看自己名下域名：跳过，不算错误
		if !opts.Privileged && opts.FilterByAssignedDomains {
			return ingestSkipped, nil
		}
		// 特权（或不过滤）：落到配置的兜底归属
		if s.cfg.FallbackOwnerID <= 0 {
			return 0, errUnattributed
		}
		ownership = &Ownership{OwnerID: s.cfg.FallbackOwnerID, RevShare: 100}
	} else if err != nil {
		return 0, err
	}

	// 非特权调用者只能入自己名下的数据
	if !opts.Privileged && opts.FilterByAssignedDomains && ownership.OwnerID != opts.CallerID {
		return ingestSkipped, nil
	}

	netRevenue := row.GrossRevenue * ownership.RevShare / 100

	record := &model.RevenueRecord{
		Date:         DateOnly(row.Date),
		Domain:       row.Domain,
		Network:      opts.Network,
		AccountID:    accountID,
		OwnerID:      ownership.OwnerID,
		RevShare:     ownership.RevShare,
		GrossRevenue: row.GrossRevenue,
		NetRevenue:   netRevenue,
		Impressions:  row.Impressions,
		Clicks:       row.Clicks,
		Currency:     row.Currency,
	}
	if raw, err := json.Marshal(row); err == nil {
		record.RawPayload = datatypes.JSON(raw)
	}

	existing, err := s.revenueRepo.GetByKey(ctx, record.Date, record.Domain, record.Network, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.revenueRepo.Create(ctx, record); err != nil {
			return 0, err
		}
		return ingestSaved, nil
	}
	if err != nil {
		return 0, err
	}

	// 值没变就跳过，这是重复执行同步安全的根本
	if revenueEquals(existing, record) {
		return ingestSkipped, nil
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if err := s.revenueRepo.Update(ctx, record); err != nil {
		return 0, err
	}
	return ingestUpdated, nil
}

// ==================== 域名自动发现 ====================

// DiscoverDomains 用默认账号拉取网络侧域名清单并登记归属
func (s *IngestService) DiscoverDomains(ctx context.Context, network string, defaultRevShare float64, ownerID int64) (*DiscoverResult, error) {
	account, err := s.vault.GetDefaultAccount(ctx, network)
	if err != nil {
		return nil, err
	}

	client, err := s.newClient(network, account.Credentials)
	if err != nil {
		return nil, err
	}
	if !client.IsConfigured() {
		return nil, fmt.Errorf("账号 %s 凭证不完整", account.Name)
	}

	domains, err := client.GetDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取域名清单失败: %w", err)
	}

	return s.resolver.DiscoverAndAssign(ctx, domains, network, defaultRevShare, ownerID)
}

// ==================== 容差比对 ====================

// revenueEquals 判定重复同步的记录是否"没变"
// 金额四舍五入到分再比较（上游浮点抖动不算变化），整数指标精确比较
func revenueEquals(a, b *model.RevenueRecord) bool {
	return centsEqual(a.GrossRevenue, b.GrossRevenue) &&
		centsEqual(a.NetRevenue, b.NetRevenue) &&
		a.Impressions == b.Impressions &&
		a.Clicks == b.Clicks &&
		a.OwnerID == b.OwnerID &&
		a.Currency == b.Currency
}

// centsEqual 按分取整后比较
func centsEqual(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
