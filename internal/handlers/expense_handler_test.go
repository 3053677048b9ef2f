package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
	"tallybook/internal/pagination"
	"tallybook/internal/services"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn  func(userID string, in services.RecordInput) (*models.Expense, error)
	getExpensesFn    func(userID string, page pagination.PageRequest, filter services.LedgerFilter) (*services.LedgerPage[models.Expense], error)
	getExpenseByIDFn func(userID, expenseID string) (*models.Expense, error)
	deleteExpenseFn  func(userID, expenseID string) error
}

func (m *mockExpenseService) CreateExpense(userID string, in services.RecordInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, in)
	}
	return &models.Expense{Amount: in.Amount, CategoryID: in.CategoryID}, nil
}

func (m *mockExpenseService) GetExpenses(userID string, page pagination.PageRequest, filter services.LedgerFilter) (*services.LedgerPage[models.Expense], error) {
	if m.getExpensesFn != nil {
		return m.getExpensesFn(userID, page, filter)
	}
	return &services.LedgerPage[models.Expense]{PageResponse: pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)}, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses", handler.GetExpenses)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

// --- tests ---

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses", `{"amount":"45.99","category_id":"`+testCategoryID+`"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		expense := parseJSON(t, rec)["expense"].(map[string]interface{})
		if expense["amount"] != "45.99" {
			t.Errorf("expected 45.99, got %v", expense["amount"])
		}
		if expense["category_id"] != testCategoryID {
			t.Errorf("expected category %s, got %v", testCategoryID, expense["category_id"])
		}
	})

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses", `{"amount":"-3"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/expenses", handler.CreateExpense)

		rec := doRequest(r, "POST", "/expenses", `{"amount":"3"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestExpenseHandler_GetExpense(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseByIDFn: func(_, _ string) (*models.Expense, error) {
				return nil, apperrors.ErrExpenseNotFound
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/"+testIncomeID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
