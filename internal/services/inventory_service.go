package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
	"tallybook/internal/pagination"
	"tallybook/internal/reports"
	"tallybook/internal/uuid"
)

// InsufficientStockError is returned by ReserveStock when the counter cannot
// cover the requested quantity.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Unwrap exposes the error as INSUFFICIENT_STOCK with the counts as details.
func (e *InsufficientStockError) Unwrap() error {
	return apperrors.WithDetails(
		apperrors.WithMessage(apperrors.ErrInsufficientStock, fmt.Sprintf("only %d in stock", e.Available)),
		map[string]any{"product_id": e.ProductID, "requested": e.Requested, "available": e.Available},
	)
}

// inventoryService owns products and is the only writer of their stock counters.
type inventoryService struct {
	db *gorm.DB
}

// NewInventoryService creates a new InventoryServicer.
func NewInventoryService(db *gorm.DB) InventoryServicer {
	return &inventoryService{db: db}
}

// CreateProduct adds a product. A blank SKU is generated and a missing
// threshold defaults to models.DefaultLowStockThreshold.
func (s *inventoryService) CreateProduct(userID string, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.ErrEmptyName
	}
	if in.CostPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "prices must not be negative")
	}
	if in.Quantity < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidQuantity, "quantity must not be negative")
	}

	threshold := models.DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidQuantity, "low stock threshold must not be negative")
		}
		threshold = *in.LowStockThreshold
	}

	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		sku = "SKU-" + uuid.Code(8)
	}

	product := &models.Product{
		UserID:            userID,
		Name:              name,
		SKU:               sku,
		Category:          strings.TrimSpace(in.Category),
		CostPrice:         in.CostPrice,
		SellingPrice:      in.SellingPrice,
		Quantity:          in.Quantity,
		LowStockThreshold: threshold,
	}
	// Select all columns so a zero threshold is stored instead of the column default.
	if err := s.db.Select("*").Create(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// GetProducts lists products newest first.
func (s *inventoryService) GetProducts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Product{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var products []models.Product
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(products, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProductByID retrieves a product by ID for a specific user
func (s *inventoryService) GetProductByID(userID, productID string) (*models.Product, error) {
	return findProduct(s.db, userID, productID)
}

func findProduct(db *gorm.DB, userID, productID string) (*models.Product, error) {
	var product models.Product
	if err := db.Where("id = ? AND user_id = ?", productID, userID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &product, nil
}

// DeleteProduct removes a product. Past sale items keep their product ID.
func (s *inventoryService) DeleteProduct(userID, productID string) error {
	result := s.db.Where("id = ? AND user_id = ?", productID, userID).Delete(&models.Product{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// AdjustStock sets the stock counter to an absolute quantity, as after a
// stock take or a delivery.
func (s *inventoryService) AdjustStock(userID, productID string, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidQuantity, "quantity must not be negative")
	}

	result := s.db.Model(&models.Product{}).
		Where("id = ? AND user_id = ?", productID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrProductNotFound
	}
	return findProduct(s.db, userID, productID)
}

// CheckAvailability reports whether quantity units can be sold now. It is
// advisory: only ReserveStock decides.
func (s *inventoryService) CheckAvailability(userID, productID string, quantity int) (*Availability, error) {
	product, err := findProduct(s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	return &Availability{
		ProductID: product.ID,
		Requested: quantity,
		InStock:   product.Quantity,
		Available: quantity > 0 && quantity <= product.Quantity,
	}, nil
}

// ReserveStock decrements the stock counter by quantity with a single
// conditional update, so two sales can never take the same units. Pass the
// caller's transaction as tx.
func (s *inventoryService) ReserveStock(tx *gorm.DB, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidQuantity, "quantity must be greater than zero")
	}

	result := tx.Model(&models.Product{}).
		Where("id = ? AND user_id = ? AND quantity >= ?", productID, userID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	product, err := findProduct(tx, userID, productID)
	if err != nil {
		return err
	}
	return &InsufficientStockError{ProductID: productID, Requested: quantity, Available: product.Quantity}
}

// RestoreStock returns units to the counter when a sale is reversed.
func (s *inventoryService) RestoreStock(tx *gorm.DB, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidQuantity, "quantity must be greater than zero")
	}

	result := tx.Model(&models.Product{}).
		Where("id = ? AND user_id = ?", productID, userID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// ListLowStock returns products at or below their threshold in ID order,
// capped at limit when limit > 0.
func (s *inventoryService) ListLowStock(userID string, limit int) ([]models.Product, error) {
	q := s.db.Where("user_id = ? AND quantity <= low_stock_threshold", userID).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return products, nil
}

// InventoryValue totals the selling value of all stock on hand.
func (s *inventoryService) InventoryValue(userID string) (*reports.InventoryValue, error) {
	var products []models.Product
	if err := s.db.Where("user_id = ?", userID).Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	value := reports.Inventory(products)
	return &value, nil
}
