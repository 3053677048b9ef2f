package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
	"tallybook/internal/pagination"
	"tallybook/internal/services"
)

// IdempotencyKeyHeader lets clients retry a sale without recording it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// SaleHandler handles checkout and sale history.
type SaleHandler struct {
	saleService  services.SaleServicer
	auditService services.AuditServicer
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleService services.SaleServicer, auditService services.AuditServicer) *SaleHandler {
	return &SaleHandler{saleService: saleService, auditService: auditService}
}

// SaleLineRequest is one cart line. Quantity is checked by the cart so a
// non-positive value is reported as INVALID_QUANTITY.
type SaleLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// CreateSaleRequest represents a cart submitted for checkout. Lines for the
// same product are merged.
type CreateSaleRequest struct {
	Items         []SaleLineRequest    `json:"items" binding:"dive"`
	Discount      decimal.Decimal      `json:"discount" binding:"gte=0,money"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"omitempty,payment_method"`
}

func (r CreateSaleRequest) lines() []services.CartLine {
	lines := make([]services.CartLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, services.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// QuoteSale prices a cart without recording anything.
// @Summary     Quote a sale
// @Description Validate a cart against current prices and stock and return its totals
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSaleRequest true "Cart"
// @Success     200 {object} checkout.Quote "Priced cart"
// @Failure     400 {object} ErrorResponse "Invalid cart, quantity or discount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Router      /sales/quote [post]
func (h *SaleHandler) QuoteSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	quote, err := h.saleService.Quote(userID, req.lines(), req.Discount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// CreateSale finalizes a cart into a sale, decrementing stock and posting the
// income in one step.
// @Summary     Record a sale
// @Description Finalize a cart. Send an Idempotency-Key header to make retries safe.
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key header string            false "Client-chosen key for safe retries"
// @Param       request         body   CreateSaleRequest true  "Cart"
// @Success     201 {object} checkout.Receipt "Sale recorded"
// @Failure     400 {object} ErrorResponse "Invalid cart, quantity, discount or payment method"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     409 {object} ErrorResponse "Insufficient stock or duplicate submission"
// @Failure     500 {object} ErrorResponse "Sale failed"
// @Router      /sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Idempotency-Key is too long"))
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, err := h.saleService.BuildCart(userID, req.lines())
	if err != nil {
		respondWithError(c, err)
		return
	}

	receipt, err := h.saleService.Finalize(c.Request.Context(), userID, cart, services.FinalizeOptions{
		Discount:       req.Discount,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: key,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SALE", "sale", receipt.Sale.ID, c.ClientIP(),
		map[string]interface{}{
			"total":          receipt.Sale.TotalAmount.String(),
			"discount":       receipt.Sale.Discount.String(),
			"payment_method": receipt.Sale.PaymentMethod,
			"items":          len(receipt.Sale.Items),
		})

	c.JSON(http.StatusCreated, receipt)
}

// GetSales handles listing sales, newest first.
// @Summary     List sales
// @Tags        sales
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Sale] "Paginated sales"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales [get]
func (h *SaleHandler) GetSales(c *gin.Context) {
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

	result, err := h.saleService.GetSales(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSale handles retrieving a sale with its items.
// @Summary     Get sale by ID
// @Tags        sales
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Sale ID"
// @Success     200 {object} models.Sale "Sale details"
// @Failure     400 {object} ErrorResponse "Invalid sale ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Router      /sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	saleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sale, err := h.saleService.GetSaleByID(userID, saleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sale": sale})
}
