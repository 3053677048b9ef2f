package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tallybook/internal/models"
	"tallybook/internal/services"
)

// OperatorHandler exposes sale reconciliation to operators. Routes are
// guarded by the operator API key, not a user token, so the owner comes from
// the path.
type OperatorHandler struct {
	saleService  services.SaleServicer
	auditService services.AuditServicer
}

// NewOperatorHandler creates a new OperatorHandler.
func NewOperatorHandler(saleService services.SaleServicer, auditService services.AuditServicer) *OperatorHandler {
	return &OperatorHandler{saleService: saleService, auditService: auditService}
}

func ownerAndSale(c *gin.Context) (string, string, error) {
	userID, err := parsePathID(c, "user_id")
	if err != nil {
		return "", "", err
	}
	saleID, err := parsePathID(c, "id")
	if err != nil {
		return "", "", err
	}
	return userID, saleID, nil
}

// InspectResponse pairs a sale inspection with the sale's audit trail.
type InspectResponse struct {
	Inspection *services.SaleInspection `json:"inspection"`
	Trail      []models.AuditLog        `json:"trail"`
}

// InspectSale reports which parts of a sale reached storage.
// @Summary     Inspect a sale
// @Tags        operator
// @Produce     json
// @Security    OperatorKey
// @Param       user_id path string true "Owner ID"
// @Param       id      path string true "Sale ID"
// @Success     200 {object} InspectResponse "Inspection and audit trail"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operator/sales/{user_id}/{id} [get]
func (h *OperatorHandler) InspectSale(c *gin.Context) {
	userID, saleID, err := ownerAndSale(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	inspection, err := h.saleService.InspectSale(userID, saleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trail, err := h.auditService.Trail(userID, "sale", saleID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if trail == nil {
		trail = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, InspectResponse{Inspection: inspection, Trail: trail})
}

// CompensateSale reverses a recorded sale.
// @Summary     Compensate a sale
// @Description Return the sale's stock, remove its income posting and delete it
// @Tags        operator
// @Produce     json
// @Security    OperatorKey
// @Param       user_id path string true "Owner ID"
// @Param       id      path string true "Sale ID"
// @Success     200 {object} services.Compensation "Compensation"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operator/sales/{user_id}/{id}/compensate [post]
func (h *OperatorHandler) CompensateSale(c *gin.Context) {
	userID, saleID, err := ownerAndSale(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	comp, err := h.saleService.CompensateSale(userID, saleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "COMPENSATE_SALE", "sale", saleID, c.ClientIP(),
		map[string]interface{}{
			"restored_units": comp.RestoredUnits,
			"skipped_items":  comp.SkippedItems,
			"income_removed": comp.IncomeRemoved,
		})

	c.JSON(http.StatusOK, gin.H{"compensation": comp})
}
