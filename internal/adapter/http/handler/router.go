package handler

import (
	"net/http"

	"billpay/internal/adapter/http/middleware"
	"billpay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Coordinator    ports.TransactionCoordinator
	FundingSvc     ports.FundingService
	ReportingSvc   ports.ReportingService
	PinSvc         ports.PinService
	TokenSvc       ports.TokenService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	PalmPayKey     string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Deep health check, verifies PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	purchaseHandler := NewPurchaseHandler(deps.Coordinator, deps.PinSvc)
	walletHandler := NewWalletHandler(deps.ReportingSvc, deps.FundingSvc, deps.PalmPayKey, deps.Logger)
	reportingHandler := NewReportingHandler(deps.ReportingSvc)
	pinHandler := NewPinHandler(deps.PinSvc)

	// --- Public routes (signature-authenticated) ---
	v1.POST("/wallet/fund/callback", walletHandler.FundCallback)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	purchase := v1.Group("/purchase", jwtAuth)
	{
		purchase.POST("/airtime", rl("purchase"), purchaseHandler.Airtime)
		purchase.POST("/data", rl("purchase"), purchaseHandler.Data)
		purchase.POST("/electricity", rl("purchase"), purchaseHandler.Electricity)
		purchase.POST("/education", rl("purchase"), purchaseHandler.Education)
	}

	v1.POST("/verify", jwtAuth, rl("verify"), purchaseHandler.Verify)

	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("", rl("history"), walletHandler.GetBalance)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("history"), reportingHandler.ListTransactions)
		transactions.GET("/stats", rl("history"), reportingHandler.GetStats)
	}

	v1.PUT("/pin", jwtAuth, rl("pin"), pinHandler.SetPin)

	return r
}

// HealthCheck handles GET /health, pinging every registered dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
