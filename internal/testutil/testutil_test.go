package testutil_test

import (
	"testing"

	"tallybook/internal/calendar"
	"tallybook/internal/errors"
	"tallybook/internal/models"
	"tallybook/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each table.
	var count int64
	for _, table := range []string{"users", "income_categories", "expense_categories", "products", "income", "expenses", "sales", "sale_items", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, a)
	b := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, b)

	testutil.CreateTestUser(t, a)

	var count int64
	if err := b.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected databases to be isolated, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryKindExpense)
	var stored models.Category
	if err := db.Table("expense_categories").First(&stored, "id = ?", category.ID).Error; err != nil {
		t.Fatalf("expense category should be stored in expense_categories: %v", err)
	}

	product := testutil.CreateTestProduct(t, db, user.ID, "12.50", 8)
	testutil.AssertDecimal(t, "12.50", product.SellingPrice)
	if product.Quantity != 8 {
		t.Errorf("expected quantity 8, got %d", product.Quantity)
	}

	day := calendar.MustParse("2024-03-15")
	income := testutil.CreateTestIncome(t, db, user.ID, "40", day)
	var reloaded models.Income
	if err := db.First(&reloaded, "id = ?", income.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !reloaded.IncomeDate.Equal(day) {
		t.Errorf("expected income date %s, got %s", day, reloaded.IncomeDate)
	}

	expense := testutil.CreateTestExpense(t, db, user.ID, "9.99", day, &category.ID)
	testutil.AssertDecimal(t, "9.99", expense.Amount)
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrProductNotFound, "custom message")
	testutil.AssertAppError(t, err, "PRODUCT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
