package router

import (
	"adrev_hub_v1_202508/internal/config"
	"adrev_hub_v1_202508/internal/controller"
	"adrev_hub_v1_202508/internal/middleware"
	"adrev_hub_v1_202508/internal/model"
	"adrev_hub_v1_202508/internal/service"

	"github.com/gin-gonic/gin"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	cfg *config.LimitConfig,
	apiKeyService *service.ApiKeyService,
	authCtrl *controller.AuthController,
	accountCtrl *controller.AccountController,
	domainCtrl *controller.DomainController,
	syncCtrl *controller.SyncController,
	reportCtrl *controller.ReportController,
	apiKeyCtrl *controller.ApiKeyController) {

	counterStore := middleware.NewMemoryCounterStore()

	api := r.Group("/api/v1")
	{
		// auth 认证组：按 IP 限流，防爆破
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimitByIP(counterStore, "auth", cfg.AuthPerWindow, cfg.AuthWindow))
		{
			// POST /api/v1/auth/login
			auth.POST("/login", authCtrl.Login)
			// POST /api/v1/auth/refresh
			auth.POST("/refresh", authCtrl.Refresh)
		}

		// users 用户管理：登录后访问
		users := api.Group("/users")
		users.Use(middleware.JWTAuth(), middleware.AuditContext())
		{
			// POST /api/v1/users 仅管理员
			users.POST("", middleware.RequireRole(model.RoleAdmin), authCtrl.CreateUser)
			// PUT /api/v1/users/password
			users.PUT("/password", authCtrl.ChangePassword)
		}

		// accounts 网络账号：仅管理员
		accounts := api.Group("/accounts")
		accounts.Use(middleware.JWTAuth(), middleware.RequireRole(model.RoleAdmin), middleware.AuditContext())
		{
			accounts.GET("", accountCtrl.ListAccounts)
			accounts.POST("", accountCtrl.CreateAccount)
			accounts.PUT("/:id", accountCtrl.UpdateAccount)
		}

		// domains 域名归属
		domains := api.Group("/domains")
		domains.Use(middleware.JWTAuth(), middleware.AuditContext())
		{
			// 列表站长可见（自动限定自己名下），写操作仅管理员
			domains.GET("", domainCtrl.ListAssignments)
			domains.POST("", middleware.RequireRole(model.RoleAdmin), domainCtrl.CreateAssignment)
			domains.PUT("/:id", middleware.RequireRole(model.RoleAdmin), domainCtrl.UpdateAssignment)
			// POST /api/v1/domains/discover/:network
			domains.POST("/discover/:network", middleware.RequireRole(model.RoleAdmin), domainCtrl.DiscoverDomains)
		}

		// sync 同步：登录后访问，按 IP 限流
		syncGroup := api.Group("/sync")
		syncGroup.Use(middleware.JWTAuth(), middleware.AuditContext(),
			middleware.RateLimitByIP(counterStore, "sync", cfg.SyncPerWindow, cfg.SyncWindow))
		{
			// POST /api/v1/sync/:network
			syncGroup.POST("/:network", syncCtrl.SyncNetwork)
			// POST /api/v1/sync 全量异步，仅管理员
			syncGroup.POST("", middleware.RequireRole(model.RoleAdmin), syncCtrl.SyncAllNetworks)
		}

		// apikeys 密钥管理：登录后访问
		apikeys := api.Group("/apikeys")
		apikeys.Use(middleware.JWTAuth(), middleware.AuditContext())
		{
			apikeys.GET("", apiKeyCtrl.ListKeys)
			apikeys.POST("", apiKeyCtrl.CreateKey)
			apikeys.DELETE("/:id", apiKeyCtrl.RevokeKey)
		}

		// reports 报表：API 密钥认证 + 按密钥限流
		reports := api.Group("/reports")
		{
			reports.GET("",
				middleware.ApiKeyAuth(apiKeyService, counterStore, model.ScopeReportsRead),
				reportCtrl.ListReports)
			reports.GET("/summary",
				middleware.ApiKeyAuth(apiKeyService, counterStore, model.ScopeReportsRead),
				reportCtrl.Summary)
			reports.GET("/export",
				middleware.ApiKeyAuth(apiKeyService, counterStore, model.ScopeReportsExport),
				reportCtrl.ExportCSV)
		}
	}

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
