package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the authoritative catalog record. Order pricing always reads
// Price and IsAvailable from here, never from client input.
type Product struct {
	ID          int64           `bson:"_id" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Price       decimal.Decimal `bson:"price" json:"price"`
	Unit        string          `bson:"unit" json:"unit"`
	Category    string          `bson:"category,omitempty" json:"category,omitempty"`
	Type        string          `bson:"type,omitempty" json:"type,omitempty"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    string          `bson:"imageUrl,omitempty" json:"image_url,omitempty"`
	IsAvailable bool            `bson:"isAvailable" json:"is_available"`
	Stock       decimal.Decimal `bson:"stock" json:"stock"`
	Used        decimal.Decimal `bson:"used" json:"used"`
	NeedToOrder decimal.Decimal `bson:"needToOrder" json:"need_to_order"`
	CreatedAt   time.Time       `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updated_at"`
}

const (
	StockStatusLow    = "low"
	StockStatusMedium = "medium"
	StockStatusHigh   = "high"
)

var mediumStockFactor = decimal.NewFromFloat(1.5)

// AvailableStock is what is left on hand after orders, never negative.
func (p Product) AvailableStock() decimal.Decimal {
	return decimal.Max(decimal.Zero, p.Stock.Sub(p.Used))
}

func (p Product) StockStatus() string {
	switch {
	case p.Stock.LessThanOrEqual(p.NeedToOrder):
		return StockStatusLow
	case p.Stock.LessThanOrEqual(p.NeedToOrder.Mul(mediumStockFactor)):
		return StockStatusMedium
	default:
		return StockStatusHigh
	}
}

func (p Product) StockDisplay() string {
	return fmt.Sprintf("%s%s", p.Stock.String(), p.Unit)
}

// Shortage is how far stock is below the reorder level.
func (p Product) Shortage() decimal.Decimal {
	return decimal.Max(decimal.Zero, p.NeedToOrder.Sub(p.Stock))
}

// ProductFilter narrows product listings; empty fields match everything.
type ProductFilter struct {
	Category  string
	Type      string
	Available *bool
}

// StockUpdate carries the stock counters to overwrite; nil fields are left as is.
type StockUpdate struct {
	Stock       *decimal.Decimal `json:"stock"`
	Used        *decimal.Decimal `json:"used"`
	NeedToOrder *decimal.Decimal `json:"need_to_order"`
}

func (u StockUpdate) IsEmpty() bool {
	return u.Stock == nil && u.Used == nil && u.NeedToOrder == nil
}

const (
	stockDigits = 10
	stockPlaces = 2
)

// Checked bounds every set counter before it is stored and returns the update
// with zeros made canonical, plus one message per bad field.
func (u StockUpdate) Checked() (StockUpdate, []string) {
	var details []string
	check := func(name string, v *decimal.Decimal) *decimal.Decimal {
		if v == nil {
			return nil
		}
		d, msg := CheckAmount(*v, stockDigits, stockPlaces)
		if msg != "" {
			details = append(details, name+" "+msg)
		}
		return &d
	}
	u.Stock = check("stock", u.Stock)
	u.Used = check("used", u.Used)
	u.NeedToOrder = check("need_to_order", u.NeedToOrder)
	return u, details
}

// CategoryStock is one row of the stock report over available products.
type CategoryStock struct {
	Category         string          `bson:"_id" json:"category"`
	TotalProducts    int64           `bson:"totalProducts" json:"total_products"`
	TotalStock       decimal.Decimal `bson:"totalStock" json:"total_stock"`
	TotalUsed        decimal.Decimal `bson:"totalUsed" json:"total_used"`
	TotalNeedToOrder decimal.Decimal `bson:"totalNeedToOrder" json:"total_need_to_order"`
	LowStockCount    int64           `bson:"lowStockCount" json:"low_stock_count"`
}
