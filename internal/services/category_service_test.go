package services

import (
	"testing"

	"tallybook/internal/calendar"
	"tallybook/internal/models"
	"tallybook/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, models.CategoryKindExpense, "  Rent  ")
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected category ID")
		}
		if cat.Name != "Rent" {
			t.Errorf("expected trimmed name Rent, got %q", cat.Name)
		}
		if cat.Kind != models.CategoryKindExpense {
			t.Errorf("expected kind expense, got %s", cat.Kind)
		}

		var count int64
		db.Table("expense_categories").Count(&count)
		if count != 1 {
			t.Errorf("expected 1 expense category row, got %d", count)
		}
		db.Table("income_categories").Count(&count)
		if count != 0 {
			t.Errorf("expected no income category rows, got %d", count)
		}
	})

	t.Run("blank_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, models.CategoryKindIncome, "   ")
		testutil.AssertAppError(t, err, "EMPTY_NAME")
	})

	t.Run("invalid_kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, models.CategoryKind("asset"), "Stock")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_names_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, models.CategoryKindIncome, "Sales")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(user.ID, models.CategoryKindIncome, "sales")
		testutil.AssertNoError(t, err)
	})
}

func TestGetCategories(t *testing.T) {
	t.Run("ordered_and_scoped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		for _, name := range []string{"Rent", "Utilities", "Stock"} {
			_, err := svc.CreateCategory(user.ID, models.CategoryKindExpense, name)
			testutil.AssertNoError(t, err)
		}
		testutil.CreateTestCategory(t, db, other.ID, models.CategoryKindExpense)
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryKindIncome)

		cats, err := svc.GetCategories(user.ID, models.CategoryKindExpense)
		testutil.AssertNoError(t, err)

		if len(cats) != 3 {
			t.Fatalf("expected 3 categories, got %d", len(cats))
		}
		for i, want := range []string{"Rent", "Utilities", "Stock"} {
			if cats[i].Name != want {
				t.Errorf("position %d: expected %s, got %s", i, want, cats[i].Name)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cats, err := svc.GetCategories(user.ID, models.CategoryKindIncome)
		testutil.AssertNoError(t, err)
		if cats == nil || len(cats) != 0 {
			t.Errorf("expected empty, non-nil slice, got %v", cats)
		}
	})
}

func TestGetCategoryByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryKindIncome)

	t.Run("found", func(t *testing.T) {
		got, err := svc.GetCategoryByID(user.ID, models.CategoryKindIncome, cat.ID)
		testutil.AssertNoError(t, err)
		if got.Name != cat.Name {
			t.Errorf("expected %s, got %s", cat.Name, got.Name)
		}
	})

	t.Run("wrong_kind", func(t *testing.T) {
		_, err := svc.GetCategoryByID(user.ID, models.CategoryKindExpense, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("other_user", func(t *testing.T) {
		_, err := svc.GetCategoryByID(other.ID, models.CategoryKindIncome, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("clears_references", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryKindExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, "50", calendar.MustParse("2024-03-01"), &cat.ID)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, models.CategoryKindExpense, cat.ID))

		var reloaded models.Expense
		if err := db.First(&reloaded, "id = ?", expense.ID).Error; err != nil {
			t.Fatalf("expense should survive category deletion: %v", err)
		}
		if reloaded.CategoryID != nil {
			t.Errorf("expected category_id to be cleared, got %v", *reloaded.CategoryID)
		}

		_, err := svc.GetCategoryByID(user.ID, models.CategoryKindExpense, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteCategory(user.ID, models.CategoryKindIncome, "01900000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
