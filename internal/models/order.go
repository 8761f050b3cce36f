package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is one priced line of an order. Name, unit and price are copied
// from the product at order time so later catalog changes do not rewrite history.
type OrderItem struct {
	ID          int64           `bson:"_id" json:"id"`
	OrderID     int64           `bson:"orderId" json:"order_id"`
	ProductID   int64           `bson:"productId" json:"product_id"`
	ProductName string          `bson:"productName" json:"product_name"`
	Unit        string          `bson:"unit" json:"unit"`
	Price       decimal.Decimal `bson:"price" json:"price"`
	Quantity    decimal.Decimal `bson:"quantity" json:"quantity"`
	TotalPrice  decimal.Decimal `bson:"totalPrice" json:"total_price"`
	CreatedAt   time.Time       `bson:"createdAt" json:"created_at"`
}

// Order defines the persisted order document. TotalItems is the sum of item
// quantities, not the number of lines.
type Order struct {
	ID              int64           `bson:"_id" json:"id"`
	CustomerName    string          `bson:"customerName" json:"customer_name"`
	CustomerEmail   string          `bson:"customerEmail,omitempty" json:"customer_email,omitempty"`
	CustomerPhone   string          `bson:"customerPhone,omitempty" json:"customer_phone,omitempty"`
	CustomerAddress string          `bson:"customerAddress,omitempty" json:"customer_address,omitempty"`
	TotalAmount     decimal.Decimal `bson:"totalAmount" json:"total_amount"`
	TotalItems      decimal.Decimal `bson:"totalItems" json:"total_items"`
	Status          OrderStatus     `bson:"status" json:"status"`
	Notes           string          `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time       `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updated_at"`
}

// OrderWithItems is an order as returned by listings.
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

type OrderFilter struct {
	Status *OrderStatus
	Limit  int64
	Offset int64
}

type OrderStats struct {
	TotalOrders       int64           `bson:"totalOrders" json:"total_orders"`
	PendingOrders     int64           `bson:"pendingOrders" json:"pending_orders"`
	ConfirmedOrders   int64           `bson:"confirmedOrders" json:"confirmed_orders"`
	DeliveredOrders   int64           `bson:"deliveredOrders" json:"delivered_orders"`
	TotalRevenue      decimal.Decimal `bson:"totalRevenue" json:"total_revenue"`
	AverageOrderValue decimal.Decimal `bson:"averageOrderValue" json:"average_order_value"`
}
