package handlers

import (
	"github.com/shopspring/decimal"

	"tallybook/internal/calendar"
	apperrors "tallybook/internal/errors"
	"tallybook/internal/services"
)

// CreateRecordRequest is the payload for a new income or expense record.
// Date defaults to today in the report zone.
type CreateRecordRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0,money"`
	Description string          `json:"description" binding:"max=500"`
	CategoryID  *string         `json:"category_id"`
	Date        string          `json:"date" binding:"omitempty,iso_date"`
}

func (r CreateRecordRequest) input() (services.RecordInput, error) {
	in := services.RecordInput{
		Amount:      r.Amount,
		Description: r.Description,
		CategoryID:  r.CategoryID,
	}
	if r.Date != "" {
		d, err := calendar.Parse(r.Date)
		if err != nil {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD")
		}
		in.Date = d
	}
	return in, nil
}

// ledgerQuery holds the optional listing filters shared by income and expenses.
type ledgerQuery struct {
	From       string `form:"from" binding:"omitempty,iso_date"`
	To         string `form:"to" binding:"omitempty,iso_date"`
	CategoryID string `form:"category_id"`
}

func (q ledgerQuery) filter() (services.LedgerFilter, error) {
	var f services.LedgerFilter
	var err error
	if q.From != "" {
		if f.From, err = calendar.Parse(q.From); err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be YYYY-MM-DD")
		}
	}
	if q.To != "" {
		if f.To, err = calendar.Parse(q.To); err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be YYYY-MM-DD")
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from")
	}
	if q.CategoryID != "" {
		id := q.CategoryID
		f.CategoryID = &id
	}
	return f, nil
}
