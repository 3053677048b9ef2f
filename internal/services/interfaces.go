package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tallybook/internal/calendar"
	"tallybook/internal/checkout"
	"tallybook/internal/models"
	"tallybook/internal/pagination"
	"tallybook/internal/reports"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName, businessName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID string, action, resourceType string, resourceID string, ipAddress string, changes map[string]interface{})
	Trail(userID, resourceType, resourceID string) ([]models.AuditLog, error)
}

// CategoryServicer defines the contract for the income and expense category registries.
type CategoryServicer interface {
	CreateCategory(userID string, kind models.CategoryKind, name string) (*models.Category, error)
	GetCategories(userID string, kind models.CategoryKind) ([]models.Category, error)
	GetCategoryByID(userID string, kind models.CategoryKind, categoryID string) (*models.Category, error)
	DeleteCategory(userID string, kind models.CategoryKind, categoryID string) error
}

// ProductInput holds the fields for a new product. A nil LowStockThreshold
// takes the default.
type ProductInput struct {
	Name              string
	SKU               string
	Category          string
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	Quantity          int
	LowStockThreshold *int
}

// Availability answers whether a quantity of a product can be sold right now.
type Availability struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	InStock   int    `json:"in_stock"`
	Available bool   `json:"available"`
}

// InventoryServicer defines the contract for products and their stock counters.
type InventoryServicer interface {
	CreateProduct(userID string, in ProductInput) (*models.Product, error)
	GetProducts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
	GetProductByID(userID, productID string) (*models.Product, error)
	DeleteProduct(userID, productID string) error
	AdjustStock(userID, productID string, quantity int) (*models.Product, error)
	CheckAvailability(userID, productID string, quantity int) (*Availability, error)
	ReserveStock(tx *gorm.DB, userID, productID string, quantity int) error
	RestoreStock(tx *gorm.DB, userID, productID string, quantity int) error
	ListLowStock(userID string, limit int) ([]models.Product, error)
	InventoryValue(userID string) (*reports.InventoryValue, error)
}

// LedgerFilter narrows income and expense listings. Zero dates are unbounded.
type LedgerFilter struct {
	From       calendar.Date
	To         calendar.Date
	CategoryID *string
}

// LedgerPage is a page of records plus the total amount of every record
// matching the filter, not just the ones on the page.
type LedgerPage[T any] struct {
	pagination.PageResponse[T]
	Total decimal.Decimal `json:"total"`
}

// RecordInput holds the fields for a new income or expense record. A zero
// Date means today.
type RecordInput struct {
	Amount      decimal.Decimal
	Description string
	CategoryID  *string
	Date        calendar.Date
}

// IncomeServicer defines the contract for income records.
type IncomeServicer interface {
	CreateIncome(userID string, in RecordInput) (*models.Income, error)
	GetIncome(userID string, page pagination.PageRequest, filter LedgerFilter) (*LedgerPage[models.Income], error)
	GetIncomeByID(userID, incomeID string) (*models.Income, error)
	DeleteIncome(userID, incomeID string) error
}

// ExpenseServicer defines the contract for expense records.
type ExpenseServicer interface {
	CreateExpense(userID string, in RecordInput) (*models.Expense, error)
	GetExpenses(userID string, page pagination.PageRequest, filter LedgerFilter) (*LedgerPage[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
}

// CartLine is a requested product and quantity.
type CartLine struct {
	ProductID string
	Quantity  int
}

// FinalizeOptions carries the checkout choices for a sale.
type FinalizeOptions struct {
	Discount       decimal.Decimal
	PaymentMethod  models.PaymentMethod
	IdempotencyKey string
}

// SaleInspection reports which parts of a sale are present in storage.
type SaleInspection struct {
	SaleID       string       `json:"sale_id"`
	SaleExists   bool         `json:"sale_exists"`
	ItemCount    int          `json:"item_count"`
	IncomeExists bool         `json:"income_exists"`
	IncomeID     string       `json:"income_id,omitempty"`
	Sale         *models.Sale `json:"sale,omitempty"`
	Consistent   bool         `json:"consistent"`
}

// Compensation summarises a reversed sale.
type Compensation struct {
	SaleID        string `json:"sale_id"`
	RestoredUnits int    `json:"restored_units"`
	SkippedItems  int    `json:"skipped_items"`
	IncomeRemoved bool   `json:"income_removed"`
	ItemsRemoved  int    `json:"items_removed"`
}

// SaleServicer defines the contract for building and finalizing sales.
type SaleServicer interface {
	BuildCart(userID string, lines []CartLine) (*checkout.Cart, error)
	Quote(userID string, lines []CartLine, discount decimal.Decimal) (*checkout.Quote, error)
	Finalize(ctx context.Context, userID string, cart *checkout.Cart, opts FinalizeOptions) (*checkout.Receipt, error)
	GetSales(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Sale], error)
	GetSaleByID(userID, saleID string) (*models.Sale, error)
	InspectSale(userID, saleID string) (*SaleInspection, error)
	CompensateSale(userID, saleID string) (*Compensation, error)
}

// ReportServicer defines the contract for dashboards and period reports.
type ReportServicer interface {
	Snapshot(ctx context.Context, userID string) (*reports.Snapshot, error)
	Dashboard(ctx context.Context, userID string) (*reports.Dashboard, error)
	Report(ctx context.Context, userID string, days int) (*reports.Report, error)
	Today() calendar.Date
}
