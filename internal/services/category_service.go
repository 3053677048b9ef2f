package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
)

// categoryService handles the income and expense category registries.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func checkKind(kind models.CategoryKind) error {
	if !kind.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category kind must be income or expense")
	}
	return nil
}

// CreateCategory adds a named category of the given kind. Names are not
// deduplicated.
func (s *categoryService) CreateCategory(userID string, kind models.CategoryKind, name string) (*models.Category, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrEmptyName
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Kind:   kind,
	}
	if err := s.db.Table(kind.Table()).Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetCategories lists every category of the kind in creation order.
func (s *categoryService) GetCategories(userID string, kind models.CategoryKind) ([]models.Category, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	categories := []models.Category{}
	if err := s.db.Table(kind.Table()).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range categories {
		categories[i].Kind = kind
	}
	return categories, nil
}

// GetCategoryByID retrieves a category of the kind by ID for a specific user
func (s *categoryService) GetCategoryByID(userID string, kind models.CategoryKind, categoryID string) (*models.Category, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return findCategory(s.db, userID, kind, categoryID)
}

func findCategory(db *gorm.DB, userID string, kind models.CategoryKind, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Table(kind.Table()).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	category.Kind = kind
	return &category, nil
}

// DeleteCategory removes a category and clears it from the records that used
// it, in one transaction.
func (s *categoryService) DeleteCategory(userID string, kind models.CategoryKind, categoryID string) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findCategory(tx, userID, kind, categoryID); err != nil {
			return err
		}

		var records interface{} = &models.Expense{}
		if kind == models.CategoryKindIncome {
			records = &models.Income{}
		}
		if err := tx.Model(records).
			Where("category_id = ? AND user_id = ?", categoryID, userID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Table(kind.Table()).
			Where("id = ? AND user_id = ?", categoryID, userID).
			Delete(&models.Category{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
