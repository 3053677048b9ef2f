package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was paid.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodPOS      PaymentMethod = "pos"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodPOS:
		return true
	}
	return false
}

// Sale is a finalized checkout. Sales are written once and never edited.
type Sale struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	Discount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"discount"`
	PaymentMethod PaymentMethod   `gorm:"not null;default:cash" json:"payment_method"`
	SaleDate      time.Time       `gorm:"not null;index" json:"sale_date"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// SaleItem is one line of a sale with the price captured at checkout.
// ProductID is not a foreign key so sale history survives product deletion.
type SaleItem struct {
	Base
	SaleID     string          `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID  string          `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
}
