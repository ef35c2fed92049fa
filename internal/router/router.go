package router

import (
	"context"
	"time"

	"tileledger/internal/config"
	"tileledger/internal/handler"
	"tileledger/internal/infra"
	"tileledger/internal/middleware"
	"tileledger/internal/repository"
	"tileledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Deps are the infrastructure pieces built by the composition root.
type Deps struct {
	Store   repository.Store
	Locker  infra.Locker
	Breaker *infra.CircuitBreaker
	// Clock overrides time.Now for ledger timestamps; nil in production.
	Clock func() time.Time
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Store decorators ← backend.
// The rate limiter purge loop runs until ctx is done.
func New(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loginLimiter := middleware.LoginLimiter()
	apiLimiter := middleware.APILimiter(1000, time.Minute) // 1000 req/min per IP
	go middleware.RunPurge(ctx, loginLimiter, apiLimiter)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Handler())

	// ── Services ─────────────────────────────────────────────────────────────
	lowStock := decimal.NewFromInt(int64(cfg.LowStockThreshold))

	authSvc := service.NewAuthService(deps.Store, deps.Locker, cfg)
	catalogSvc := service.NewCatalogService(deps.Store, deps.Locker)
	ledgerSvc := service.NewLedgerService(deps.Store, deps.Locker, service.LedgerOptions{
		DedupeWindow: cfg.DedupeWindow(),
		Clock:        deps.Clock,
	})
	reportSvc := service.NewReportService(deps.Store)
	billSvc := service.NewBillService(catalogSvc, ledgerSvc)
	exportSvc := service.NewExportService(reportSvc, cfg.ExportDir, lowStock)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc, billSvc)
	reportsH := handler.NewReportsHandler(reportSvc, exportSvc, lowStock)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.Store, deps.Breaker))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Handler(), authH.Login)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret, cfg.AuthUsername))
	{
		products := v1.Group("/products")
		{
			products.GET("", catalogH.ListProducts)
			products.POST("", catalogH.CreateProduct)
			products.POST("/ensure", catalogH.EnsureProduct)
			products.GET("/:id/stock", reportsH.ProductStock)
		}

		customers := v1.Group("/customers")
		{
			customers.GET("", catalogH.ListCustomers)
			customers.POST("", catalogH.CreateCustomer)
			customers.POST("/ensure", catalogH.EnsureCustomer)
			customers.GET("/:id/balance", reportsH.CustomerBalance)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", catalogH.ListSuppliers)
			suppliers.POST("", catalogH.CreateSupplier)
			suppliers.POST("/ensure", catalogH.EnsureSupplier)
			suppliers.GET("/:id/balance", reportsH.SupplierBalance)
		}

		v1.GET("/moves", ledgerH.ListMoves)
		v1.POST("/moves", ledgerH.AddMove)
		v1.GET("/payments", ledgerH.ListPayments)
		v1.POST("/payments", ledgerH.AddPayment)
		v1.POST("/bills", ledgerH.SaveBill)

		v1.GET("/stock", reportsH.StockLevels)
		v1.GET("/reports/daily", reportsH.DailyReport)

		exports := v1.Group("/exports")
		{
			exports.GET("/stock", reportsH.ExportStock)
			exports.GET("/daily", reportsH.ExportDaily)
		}
	}

	return r
}
