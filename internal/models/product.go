package models

import "github.com/shopspring/decimal"

// DefaultLowStockThreshold is applied when a product is created without one.
const DefaultLowStockThreshold = 5

// Product is a stocked item that can be sold.
type Product struct {
	Base
	UserID            string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name              string          `gorm:"not null" json:"name"`
	SKU               string          `gorm:"column:sku;index" json:"sku"`
	Category          string          `json:"category"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cost_price"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"selling_price"`
	Quantity          int             `gorm:"not null;default:0" json:"quantity"`
	LowStockThreshold int             `gorm:"not null;default:5" json:"low_stock_threshold"`
}

// IsLowStock reports whether the product is at or below its threshold.
func (p Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// StockValue is the selling value of the units on hand.
func (p Product) StockValue() decimal.Decimal {
	return p.SellingPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
