package handler

import (
	"settlement-core/internal/adapter/http/middleware"
	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TradingSvc     ports.TradingService
	SettlementSvc  ports.SettlementService
	SchedulerSvc   ports.SchedulerService
	AMLSvc         ports.AMLService
	SettingsSvc    ports.SettingsService
	AuditSvc       ports.AuditService
	TokenSvc       ports.TokenService
	Prices         PriceView
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	MaxBodyBytes   int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = 1 << 20
	}
	if deps.RateLimitRules == nil {
		deps.RateLimitRules = middleware.DefaultRateLimitRules()
	}

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := deps.RateLimitRules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	// --- Account holder routes ---
	trading := NewTradingHandler(deps.TradingSvc, deps.SettlementSvc)
	v1.POST("/wallet/deposit", rl(middleware.GroupAPI), trading.Deposit)
	v1.POST("/binary", rl(middleware.GroupBinary), trading.OpenBinary)
	trades := v1.Group("/trades", rl(middleware.GroupTrading))
	{
		trades.POST("", trading.OpenTrade)
		trades.POST("/:id/close", trading.CloseTrade)
	}

	// --- Admin routes ---
	admin := v1.Group("/admin",
		middleware.RequireRole(domain.RoleAdmin, domain.RoleMaster),
		rl(middleware.GroupAdmin),
	)
	adminHandler := NewAdminHandler(deps.SettlementSvc, deps.SchedulerSvc, deps.SettingsSvc, deps.AuditSvc)
	amlHandler := NewAMLHandler(deps.AMLSvc)
	marketHandler := NewMarketHandler(deps.Prices)
	{
		admin.POST("/binary/:id/resolve", adminHandler.ResolveBinary)
		admin.DELETE("/binary/:id/schedule", adminHandler.CancelSchedule)
		admin.POST("/trades/:id/force-close", adminHandler.ForceCloseTrade)

		admin.GET("/queues/binary", adminHandler.QueueStats)
		admin.POST("/queues/binary/sweep", adminHandler.Sweep)

		admin.GET("/audit/:target/:id", adminHandler.AuditTrail)

		admin.POST("/aml/accounts/:id/run", amlHandler.RunChecks)
		admin.GET("/aml/accounts/:id/checks", amlHandler.History)
		admin.GET("/aml/checks/unresolved", amlHandler.Unresolved)
		admin.POST("/aml/checks/:id/resolve", amlHandler.ResolveCheck)

		admin.GET("/market/prices", marketHandler.ListPrices)
		admin.GET("/market/prices/:symbol", marketHandler.GetPrice)

		admin.GET("/settings/payout-rate", adminHandler.GetPayoutRate)
		admin.PUT("/settings/payout-rate", middleware.RequireRole(domain.RoleMaster), adminHandler.SetPayoutRate)
	}

	return r
}
