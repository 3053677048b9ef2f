package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tallybook/internal/calendar"
	"tallybook/internal/handlers"
	"tallybook/internal/logger"
	"tallybook/internal/middleware"
	"tallybook/internal/notify"
	"tallybook/internal/services"
	"tallybook/internal/testutil"
	"tallybook/internal/validator"
)

const operatorKey = "test-operator-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// nopPublisher drops notices.
type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ notify.Notice) error { return nil }
func (nopPublisher) Close() error                                     { return nil }

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	clock := calendar.Clock{}

	// Services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	inventoryService := services.NewInventoryService(db)
	incomeService := services.NewIncomeService(db, clock)
	expenseService := services.NewExpenseService(db, clock)
	saleService := services.NewSaleService(db, inventoryService, clock, services.WithNotifier(nopPublisher{}))
	reportService := services.NewReportService(db, clock)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	productHandler := handlers.NewProductHandler(inventoryService, auditService)
	incomeHandler := handlers.NewIncomeHandler(incomeService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	saleHandler := handlers.NewSaleHandler(saleService, auditService)
	operatorHandler := handlers.NewOperatorHandler(saleService, auditService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories/:kind")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	products := protected.Group("/products")
	products.POST("", productHandler.CreateProduct)
	products.GET("/low-stock", productHandler.GetLowStock)
	products.GET("/:id", productHandler.GetProduct)
	products.PUT("/:id/stock", productHandler.AdjustStock)
	products.GET("/:id/availability", productHandler.CheckAvailability)

	income := protected.Group("/income")
	income.POST("", incomeHandler.CreateIncome)
	income.GET("", incomeHandler.GetIncome)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)

	sales := protected.Group("/sales")
	sales.POST("", saleHandler.CreateSale)
	sales.POST("/quote", saleHandler.QuoteSale)
	sales.GET("", saleHandler.GetSales)
	sales.GET("/:id", saleHandler.GetSale)

	protected.GET("/dashboard", reportHandler.GetDashboard)
	protected.GET("/reports", reportHandler.GetReport)

	operator := v1.Group("/operator")
	operator.Use(middleware.OperatorAuthMiddleware(operatorKey))
	operator.GET("/sales/:user_id/:id", operatorHandler.InspectSale)
	operator.POST("/sales/:user_id/:id/compensate", operatorHandler.CompensateSale)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	return app.requestWithHeaders(method, path, body, token, nil)
}

func (app *testApp) requestWithHeaders(method, path, body, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User","business_name":"Corner Shop"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createProduct creates a product and returns its ID.
func (app *testApp) createProduct(t *testing.T, token, name, price string, quantity int) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"selling_price":%q,"cost_price":"1","quantity":%d}`, name, price, quantity)
	rec := app.request("POST", "/api/v1/products", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["product"].(map[string]interface{})["id"].(string)
}

// productQuantity reads a product's stock counter.
func (app *testApp) productQuantity(t *testing.T, token, productID string) float64 {
	t.Helper()
	rec := app.request("GET", "/api/v1/products/"+productID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get product failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["product"].(map[string]interface{})["quantity"].(float64)
}
