package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tallybook/internal/calendar"
	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
	"tallybook/internal/money"
)

// ledgerScope restricts a query on table to the owner's rows matching f.
func ledgerScope(table, dateColumn, userID string, f LedgerFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q := db.Where(table+".user_id = ?", userID)
		if !f.From.IsZero() {
			q = q.Where(fmt.Sprintf("%s.%s >= ?", table, dateColumn), f.From)
		}
		if !f.To.IsZero() {
			q = q.Where(fmt.Sprintf("%s.%s <= ?", table, dateColumn), f.To)
		}
		if f.CategoryID != nil {
			q = q.Where(table+".category_id = ?", *f.CategoryID)
		}
		return q
	}
}

// withCategoryName joins the category table so rows carry category_name.
func withCategoryName(table string, kind models.CategoryKind) func(*gorm.DB) *gorm.DB {
	categories := kind.Table()
	return func(db *gorm.DB) *gorm.DB {
		return db.Select(fmt.Sprintf("%s.*, %s.name AS category_name", table, categories)).
			Joins(fmt.Sprintf("LEFT JOIN %s ON %s.id = %s.category_id", categories, categories, table))
	}
}

// sumAmount totals the amount column for the scoped rows.
func sumAmount(db *gorm.DB, model interface{}, table string, scope func(*gorm.DB) *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := db.Model(model).Scopes(scope).Select(fmt.Sprintf("COALESCE(SUM(%s.amount), 0)", table)).Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total.Round(money.Scale), nil
}

// checkRecord validates a new record and resolves its category reference
// against the category table of kind.
func checkRecord(db *gorm.DB, userID string, kind models.CategoryKind, in *RecordInput, clock calendar.Clock) error {
	if !in.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if in.Amount.Exponent() < -money.Scale && !in.Amount.Equal(in.Amount.Round(money.Scale)) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must have at most two decimal places")
	}
	if in.Date.IsZero() {
		in.Date = clock.Today()
	}
	if in.CategoryID != nil && *in.CategoryID == "" {
		in.CategoryID = nil
	}
	if in.CategoryID != nil {
		if _, err := findCategory(db, userID, kind, *in.CategoryID); err != nil {
			return err
		}
	}
	return nil
}
