package checkout

import (
	"errors"
	"fmt"
	"strings"

	apperrors "tallybook/internal/errors"
)

// Step names the point in finalization at which a sale failed.
type Step string

const (
	StepValidate     Step = "validate"
	StepInsertSale   Step = "insert_sale"
	StepInsertItems  Step = "insert_items"
	StepReserveStock Step = "reserve_stock"
	StepPostIncome   Step = "post_income"
	StepCommit       Step = "commit"
)

// Conflict is a cart line the stock counter could not cover.
type Conflict struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// FailedError reports a sale that did not reach Committed.
//
// SaleID is set once the sale row was inserted inside the transaction; it is
// only meaningful to operators when Partial is true, because in every other
// case the transaction was rolled back and nothing was persisted. Partial
// means every step ran but the commit outcome is unknown.
type FailedError struct {
	Step      Step
	SaleID    string
	Conflicts []Conflict
	Partial   bool
	Err       error
}

func (e *FailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sale failed at %s", e.Step)
	if e.SaleID != "" {
		fmt.Fprintf(&b, " (sale %s)", e.SaleID)
	}
	if len(e.Conflicts) > 0 {
		fmt.Fprintf(&b, ": %d line(s) out of stock", len(e.Conflicts))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FailedError) Unwrap() error { return e.Err }

// AppError renders the failure for API clients. Validation failures keep the
// underlying code; commit-phase failures become SALE_FAILED.
func (e *FailedError) AppError() *apperrors.AppError {
	details := map[string]any{
		"step":    e.Step,
		"partial": e.Partial,
	}
	if e.SaleID != "" && e.Partial {
		details["sale_id"] = e.SaleID
	}
	if len(e.Conflicts) > 0 {
		details["conflicts"] = e.Conflicts
	}

	var appErr *apperrors.AppError
	if e.Step == StepValidate && errors.As(e.Err, &appErr) {
		return apperrors.WithDetails(appErr, details)
	}
	if len(e.Conflicts) > 0 {
		return apperrors.WithDetails(apperrors.ErrSaleConflict, details)
	}
	failed := apperrors.WithDetails(apperrors.ErrSaleFailed, details)
	failed.Internal = e.Err
	return failed
}
