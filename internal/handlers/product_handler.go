package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tallybook/internal/pagination"
	"tallybook/internal/services"
)

// ProductHandler handles products and their stock counters.
type ProductHandler struct {
	inventoryService services.InventoryServicer
	auditService     services.AuditServicer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(inventoryService services.InventoryServicer, auditService services.AuditServicer) *ProductHandler {
	return &ProductHandler{inventoryService: inventoryService, auditService: auditService}
}

// CreateProductRequest represents the request payload for creating a product.
// An empty SKU is generated; a missing threshold defaults to 5.
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,max=200"`
	SKU               string          `json:"sku" binding:"max=64"`
	Category          string          `json:"category" binding:"max=100"`
	CostPrice         decimal.Decimal `json:"cost_price" binding:"gte=0,money"`
	SellingPrice      decimal.Decimal `json:"selling_price" binding:"gte=0,money"`
	Quantity          int             `json:"quantity" binding:"gte=0"`
	LowStockThreshold *int            `json:"low_stock_threshold" binding:"omitempty,gte=0"`
}

// AdjustStockRequest sets the stock counter to an absolute value.
type AdjustStockRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

type availabilityQuery struct {
	Quantity int `form:"quantity" binding:"required,gt=0"`
}

type lowStockQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CreateProduct handles the creation of a new product.
// @Summary     Create a product
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateProductRequest true "Product details"
// @Success     201 {object} models.Product "Product created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.inventoryService.CreateProduct(userID, services.ProductInput{
		Name:              req.Name,
		SKU:               req.SKU,
		Category:          req.Category,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PRODUCT", "product", product.ID, c.ClientIP(),
		map[string]interface{}{"name": product.Name, "sku": product.SKU, "quantity": product.Quantity})

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// GetProducts handles listing products, newest first.
// @Summary     List products
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Product] "Paginated products"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [get]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.inventoryService.GetProducts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct handles retrieving a specific product.
// @Summary     Get product by ID
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     200 {object} models.Product "Product details"
// @Failure     400 {object} ErrorResponse "Invalid product ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.inventoryService.GetProductByID(userID, productID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles deleting a product. Past sale items keep their
// captured prices.
// @Summary     Delete product
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Product ID"
// @Success     200 {object} MessageResponse "Product deleted"
// @Failure     400 {object} ErrorResponse "Invalid product ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.inventoryService.DeleteProduct(userID, productID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PRODUCT", "product", productID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// AdjustStock handles a stock count correction.
// @Summary     Set stock
// @Description Set the product's stock counter to an absolute quantity
// @Tags        products
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Product ID"
// @Param       request body AdjustStockRequest true "New quantity"
// @Success     200 {object} models.Product "Updated product"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id}/stock [put]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.inventoryService.AdjustStock(userID, productID, *req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADJUST_STOCK", "product", productID, c.ClientIP(),
		map[string]interface{}{"quantity": *req.Quantity})

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CheckAvailability answers whether a quantity can be sold right now.
// @Summary     Check availability
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       id       path  string true "Product ID"
// @Param       quantity query int    true "Requested quantity"
// @Success     200 {object} services.Availability "Availability"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /products/{id}/availability [get]
func (h *ProductHandler) CheckAvailability(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	availability, err := h.inventoryService.CheckAvailability(userID, productID, q.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"availability": availability})
}

// GetLowStock lists products at or below their threshold.
// @Summary     Low stock
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Maximum products (max 100)"
// @Success     200 {array}  models.Product "Low-stock products"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /products/low-stock [get]
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q lowStockQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	products, err := h.inventoryService.ListLowStock(userID, q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetInventoryValue returns the stock totals shown on the inventory page.
// @Summary     Inventory value
// @Tags        products
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} reports.InventoryValue "Inventory value"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /inventory/value [get]
func (h *ProductHandler) GetInventoryValue(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	value, err := h.inventoryService.InventoryValue(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": value})
}
