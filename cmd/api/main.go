package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // REPORT_TIMEZONE must resolve on minimal images

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tallybook/internal/calendar"
	"tallybook/internal/config"
	"tallybook/internal/database"
	_ "tallybook/internal/docs" // Import swagger docs
	"tallybook/internal/handlers"
	"tallybook/internal/idempotency"
	"tallybook/internal/logger"
	"tallybook/internal/middleware"
	"tallybook/internal/notify"
	"tallybook/internal/services"
	"tallybook/internal/validator"
)

// @title           Tallybook API
// @version         1.0
// @description     Tallybook keeps the books for a small shop: products and stock, sales, income, expenses and reports.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey OperatorKey
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	clock, err := calendar.NewClock(appConfig.ReportTimezone)
	if err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", appConfig.ReportTimezone, err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	keys, err := newIdempotencyStore(appConfig)
	if err != nil {
		return err
	}
	defer keys.Close()

	notifier, err := newNotifier(appConfig)
	if err != nil {
		return err
	}
	defer notifier.Close()

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	inventoryService := services.NewInventoryService(db)
	incomeService := services.NewIncomeService(db, clock)
	expenseService := services.NewExpenseService(db, clock)
	saleService := services.NewSaleService(db, inventoryService, clock,
		services.WithIdempotencyStore(keys, appConfig.IdempotencyTTL),
		services.WithNotifier(notifier),
	)
	reportService := services.NewReportService(db, clock)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	productHandler := handlers.NewProductHandler(inventoryService, auditService)
	incomeHandler := handlers.NewIncomeHandler(incomeService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	saleHandler := handlers.NewSaleHandler(saleService, auditService)
	operatorHandler := handlers.NewOperatorHandler(saleService, auditService)
	reportHandler := handlers.NewReportHandler(reportService)

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Category routes
	categories := protected.Group("/categories/:kind")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Product and inventory routes
	products := protected.Group("/products")
	products.POST("", productHandler.CreateProduct)
	products.GET("", productHandler.GetProducts)
	products.GET("/low-stock", productHandler.GetLowStock)
	products.GET("/:id", productHandler.GetProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)
	products.PUT("/:id/stock", productHandler.AdjustStock)
	products.GET("/:id/availability", productHandler.CheckAvailability)
	protected.GET("/inventory/value", productHandler.GetInventoryValue)

	// Income routes
	income := protected.Group("/income")
	income.POST("", incomeHandler.CreateIncome)
	income.GET("", incomeHandler.GetIncome)
	income.GET("/:id", incomeHandler.GetIncomeRecord)
	income.DELETE("/:id", incomeHandler.DeleteIncome)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Sale routes
	sales := protected.Group("/sales")
	sales.POST("", saleHandler.CreateSale)
	sales.POST("/quote", saleHandler.QuoteSale)
	sales.GET("", saleHandler.GetSales)
	sales.GET("/:id", saleHandler.GetSale)

	// Report routes
	protected.GET("/dashboard", reportHandler.GetDashboard)
	reportRoutes := protected.Group("/reports")
	reportRoutes.GET("", reportHandler.GetReport)
	reportRoutes.GET("/export", reportHandler.ExportReport)

	// Operator routes
	operator := v1.Group("/operator")
	operator.Use(middleware.OperatorAuthMiddleware(appConfig.OperatorAPIKey))
	operator.GET("/sales/:user_id/:id", operatorHandler.InspectSale)
	operator.POST("/sales/:user_id/:id/compensate", operatorHandler.CompensateSale)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Tallybook server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newIdempotencyStore(cfg *config.Config) (idempotency.Store, error) {
	if cfg.RedisAddr == "" {
		logger.Get().Info("REDIS_ADDR not set, keeping idempotency keys in memory")
		return idempotency.NewMemoryStore(), nil
	}
	store, err := idempotency.NewRedisStore(idempotency.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect idempotency store: %w", err)
	}
	return store, nil
}

func newNotifier(cfg *config.Config) (notify.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, reconciliation notices go to the log")
		return notify.LogPublisher{}, nil
	}
	publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to connect notifier: %w", err)
	}
	return publisher, nil
}
