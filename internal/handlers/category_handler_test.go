package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
)

const testCategoryID = "0190a1b2-c3d4-7e5f-8a9b-0000000000c1"

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn  func(userID string, kind models.CategoryKind, name string) (*models.Category, error)
	getCategoriesFn   func(userID string, kind models.CategoryKind) ([]models.Category, error)
	getCategoryByIDFn func(userID string, kind models.CategoryKind, categoryID string) (*models.Category, error)
	deleteCategoryFn  func(userID string, kind models.CategoryKind, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID string, kind models.CategoryKind, name string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, kind, name)
	}
	return &models.Category{Base: models.Base{ID: testCategoryID}, UserID: userID, Name: name, Kind: kind}, nil
}

func (m *mockCategoryService) GetCategories(userID string, kind models.CategoryKind) ([]models.Category, error) {
	if m.getCategoriesFn != nil {
		return m.getCategoriesFn(userID, kind)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID string, kind models.CategoryKind, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, kind, categoryID)
	}
	return &models.Category{Base: models.Base{ID: categoryID}, Kind: kind}, nil
}

func (m *mockCategoryService) DeleteCategory(userID string, kind models.CategoryKind, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, kind, categoryID)
	}
	return nil
}

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories/:kind", handler.CreateCategory)
	auth.GET("/categories/:kind", handler.GetCategories)
	auth.GET("/categories/:kind/:id", handler.GetCategory)
	auth.DELETE("/categories/:kind/:id", handler.DeleteCategory)
	return r
}

// --- tests ---

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotKind models.CategoryKind
		svc := &mockCategoryService{
			createCategoryFn: func(userID string, kind models.CategoryKind, name string) (*models.Category, error) {
				gotKind = kind
				return &models.Category{Base: models.Base{ID: testCategoryID}, UserID: userID, Name: name, Kind: kind}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(svc, audit))

		rec := doRequest(r, "POST", "/categories/expense", `{"name":"Rent"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotKind != models.CategoryKindExpense {
			t.Errorf("expected expense kind, got %s", gotKind)
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["name"] != "Rent" {
			t.Errorf("expected Rent, got %v", category["name"])
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "CREATE_CATEGORY" {
			t.Errorf("expected a CREATE_CATEGORY audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories/income", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on blank name", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(_ string, _ models.CategoryKind, _ string) (*models.Category, error) {
				return nil, apperrors.ErrEmptyName
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories/income", `{"name":"   "}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EMPTY_NAME")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/categories/:kind", handler.CreateCategory)

		rec := doRequest(r, "POST", "/categories/income", `{"name":"Tips"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_GetCategories(t *testing.T) {
	t.Run("returns 200 with categories", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoriesFn: func(_ string, kind models.CategoryKind) ([]models.Category, error) {
				return []models.Category{{Name: "Rent", Kind: kind}, {Name: "Stock", Kind: kind}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/expense", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		categories := parseJSON(t, rec)["categories"].([]interface{})
		if len(categories) != 2 {
			t.Errorf("expected 2 categories, got %d", len(categories))
		}
	})

	t.Run("returns 400 on unknown kind", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoriesFn: func(_ string, _ models.CategoryKind) ([]models.Category, error) {
				return nil, apperrors.ErrInvalidInput
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/asset", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categories/income/"+testCategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categories/income/42", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_ string, _ models.CategoryKind, _ string) error {
				return apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categories/expense/"+testCategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}
