package models

import (
	"github.com/shopspring/decimal"

	"tallybook/internal/calendar"
)

// Income is money received. Rows posted by a sale carry the sale's ID.
type Income struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description  string          `json:"description"`
	CategoryID   *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	SaleID       *string         `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	IncomeDate   calendar.Date   `gorm:"not null;index" json:"income_date"`
	CategoryName string          `gorm:"->;-:migration" json:"category_name,omitempty"`
}

// TableName keeps the singular table name.
func (Income) TableName() string { return "income" }
