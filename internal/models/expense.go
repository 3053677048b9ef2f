package models

import (
	"github.com/shopspring/decimal"

	"tallybook/internal/calendar"
)

// Expense is money spent.
type Expense struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description  string          `json:"description"`
	CategoryID   *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	ExpenseDate  calendar.Date   `gorm:"not null;index" json:"expense_date"`
	CategoryName string          `gorm:"->;-:migration" json:"category_name,omitempty"`
}
