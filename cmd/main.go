package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adrev_hub_v1_202508/internal/config"
	"adrev_hub_v1_202508/internal/controller"
	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/repository"
	"adrev_hub_v1_202508/internal/router"
	"adrev_hub_v1_202508/internal/service"
	"adrev_hub_v1_202508/internal/task"
	"adrev_hub_v1_202508/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(db, cfg)

	// 4. 启动定时任务
	deps.TaskManager.Start()

	// 5. 初始化路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	router.InitRoutes(r, &cfg.Limits,
		deps.Services.ApiKey,
		deps.Controllers.Auth,
		deps.Controllers.Account,
		deps.Controllers.Domain,
		deps.Controllers.Sync,
		deps.Controllers.Report,
		deps.Controllers.ApiKey,
	)

	// 6. 启动服务
	startServer(r, cfg, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	TaskManager *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	User     repository.UserRepository
	Account  repository.NetworkAccountRepository
	Domain   repository.DomainAssignmentRepository
	Revenue  repository.RevenueRecordRepository
	Overview repository.OverviewRecordRepository
	ApiKey   repository.ApiKeyRepository
}

// Services 服务集合
type Services struct {
	Auth     *service.AuthService
	Vault    *service.VaultService
	Resolver *service.ResolverService
	Overview *service.OverviewService
	Ingest   *service.IngestService
	Report   *service.ReportService
	ApiKey   *service.ApiKeyService
}

// Controllers 控制器集合
type Controllers struct {
	Auth    *controller.AuthController
	Account *controller.AccountController
	Domain  *controller.DomainController
	Sync    *controller.SyncController
	Report  *controller.ReportController
	ApiKey  *controller.ApiKeyController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	db := database.InitDB(cfg.DB.DSN,
		// 用户与密钥
		&model.SysUser{}, &model.ApiKey{},
		// 网络账号与域名归属
		&model.NetworkAccount{}, &model.DomainAssignment{},
		// 收益数据
		&model.RevenueRecord{}, &model.OverviewRecord{},
	)

	// 审计回调：Create/Update 自动填 CreatedBy/UpdatedBy
	middleware.RegisterAuditCallbacks(db)
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:     repository.NewUserRepository(db),
		Account:  repository.NewNetworkAccountRepository(db),
		Domain:   repository.NewDomainAssignmentRepository(db),
		Revenue:  repository.NewRevenueRecordRepository(db),
		Overview: repository.NewOverviewRecordRepository(db),
		ApiKey:   repository.NewApiKeyRepository(db),
	}

	// -------- JWT 配置 --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
		Issuer:          cfg.JWT.Issuer,
	})

	// -------- 业务服务 --------
	services := &Services{}
	services.Auth = service.NewAuthService(repos.User)
	services.Vault = service.NewVaultService(repos.Account, &cfg.Vault)
	services.Resolver = service.NewResolverService(repos.Domain)
	services.Overview = service.NewOverviewService(repos.Revenue, repos.Overview)
	services.Ingest = service.NewIngestService(
		services.Vault, services.Resolver,
		repos.Revenue, repos.Account,
		services.Overview, &cfg.Sync,
	)
	services.Report = service.NewReportService(repos.Overview)
	services.ApiKey = service.NewApiKeyService(repos.ApiKey, repos.User, &cfg.Limits)

	// -------- 定时任务 --------
	taskManager := task.NewTaskManager(services.Ingest, &cfg.Sync)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:    controller.NewAuthController(services.Auth),
		Account: controller.NewAccountController(services.Vault),
		Domain:  controller.NewDomainController(services.Resolver, services.Ingest, cfg.Sync.DefaultRevShare),
		Sync:    controller.NewSyncController(services.Ingest, taskManager),
		Report:  controller.NewReportController(services.Report, repos.User),
		ApiKey:  controller.NewApiKeyController(services.ApiKey),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		TaskManager: taskManager,
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, cfg *config.Config, deps *Dependencies) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停后台任务，再优雅关闭 HTTP
	deps.TaskManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
