package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"tallybook/internal/calendar"
	"tallybook/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Password:     string(hash),
		BusinessName: "Test Shop",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given kind.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, kind models.CategoryKind) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Kind:   kind,
	}
	if err := db.Table(kind.Table()).Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestProduct creates a product with the given selling price and stock.
func CreateTestProduct(t *testing.T, db *gorm.DB, userID string, price string, quantity int) *models.Product {
	t.Helper()

	n := nextID()
	product := &models.Product{
		UserID:            userID,
		Name:              fmt.Sprintf("Test Product %d", n),
		SKU:               fmt.Sprintf("SKU-TEST%d", n),
		CostPrice:         decimal.RequireFromString(price).Div(decimal.NewFromInt(2)).Round(2),
		SellingPrice:      decimal.RequireFromString(price),
		Quantity:          quantity,
		LowStockThreshold: models.DefaultLowStockThreshold,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateTestIncome creates an income record dated on the given day.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID string, amount string, date calendar.Date) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Description: fmt.Sprintf("Test income %d", nextID()),
		IncomeDate:  date,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestExpense creates an expense record dated on the given day.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, amount string, date calendar.Date, categoryID *string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Description: fmt.Sprintf("Test expense %d", nextID()),
		CategoryID:  categoryID,
		ExpenseDate: date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
