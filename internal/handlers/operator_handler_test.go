package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/services"
)

func setupOperatorRouter(handler *OperatorHandler) *gin.Engine {
	r := gin.New()
	r.GET("/operator/sales/:user_id/:id", handler.InspectSale)
	r.POST("/operator/sales/:user_id/:id/compensate", handler.CompensateSale)
	return r
}

func TestOperatorHandler_InspectSale(t *testing.T) {
	t.Run("returns 200 with inspection for the owner in the path", func(t *testing.T) {
		var gotUser string
		svc := &mockSaleService{
			inspectSaleFn: func(userID, saleID string) (*services.SaleInspection, error) {
				gotUser = userID
				return &services.SaleInspection{SaleID: saleID, SaleExists: true, ItemCount: 2, IncomeExists: true, Consistent: true}, nil
			},
		}
		audit := &mockAuditService{}
		audit.Log(testOtherID, "CREATE_SALE", "sale", testSaleID, "", nil)
		audit.Log(testOtherID, "CREATE_SALE", "sale", "someone-elses", "", nil)
		r := setupOperatorRouter(NewOperatorHandler(svc, audit))

		rec := doRequest(r, "GET", "/operator/sales/"+testOtherID+"/"+testSaleID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUser != testOtherID {
			t.Errorf("expected owner %s, got %s", testOtherID, gotUser)
		}
		result := parseJSON(t, rec)
		inspection := result["inspection"].(map[string]interface{})
		if inspection["consistent"] != true {
			t.Errorf("expected consistent, got %v", inspection["consistent"])
		}
		if trail := result["trail"].([]interface{}); len(trail) != 1 {
			t.Errorf("expected 1 trail entry, got %d", len(trail))
		}
	})

	t.Run("returns 400 on malformed owner", func(t *testing.T) {
		r := setupOperatorRouter(NewOperatorHandler(&mockSaleService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/operator/sales/someone/"+testSaleID, "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestOperatorHandler_CompensateSale(t *testing.T) {
	t.Run("returns 200 and audits", func(t *testing.T) {
		svc := &mockSaleService{
			compensateSaleFn: func(_, saleID string) (*services.Compensation, error) {
				return &services.Compensation{SaleID: saleID, RestoredUnits: 3, IncomeRemoved: true, ItemsRemoved: 1}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupOperatorRouter(NewOperatorHandler(svc, audit))

		rec := doRequest(r, "POST", "/operator/sales/"+testUserID+"/"+testSaleID+"/compensate", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		comp := parseJSON(t, rec)["compensation"].(map[string]interface{})
		if comp["restored_units"].(float64) != 3 {
			t.Errorf("expected 3 restored units, got %v", comp["restored_units"])
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "COMPENSATE_SALE" || audit.entries[0].userID != testUserID {
			t.Errorf("expected a COMPENSATE_SALE audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 404 on unknown sale", func(t *testing.T) {
		svc := &mockSaleService{
			compensateSaleFn: func(_, _ string) (*services.Compensation, error) { return nil, apperrors.ErrSaleNotFound },
		}
		r := setupOperatorRouter(NewOperatorHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/operator/sales/"+testUserID+"/"+testSaleID+"/compensate", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SALE_NOT_FOUND")
	})
}
