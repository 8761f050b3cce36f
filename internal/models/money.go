package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the scale money is rounded to and written with.
const MoneyPlaces = 2

// Money renders an amount as a JSON string with exactly two decimal places,
// "7.50" rather than "7.5".
func Money(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

type plainOrderItem OrderItem

type orderItemJSON struct {
	plainOrderItem
	Price      string `json:"price"`
	TotalPrice string `json:"total_price"`
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderItemJSON{
		plainOrderItem: plainOrderItem(i),
		Price:          Money(i.Price),
		TotalPrice:     Money(i.TotalPrice),
	})
}

type plainOrder Order

type orderJSON struct {
	plainOrder
	TotalAmount string `json:"total_amount"`
}

func newOrderJSON(o Order) orderJSON {
	return orderJSON{plainOrder: plainOrder(o), TotalAmount: Money(o.TotalAmount)}
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(newOrderJSON(o))
}

// MarshalJSON is needed because the embedded Order's method would otherwise
// be promoted and drop the items.
func (o OrderWithItems) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		orderJSON
		Items []OrderItem `json:"items"`
	}{newOrderJSON(o.Order), o.Items})
}

type plainOrderStats OrderStats

func (s OrderStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		plainOrderStats
		TotalRevenue      string `json:"total_revenue"`
		AverageOrderValue string `json:"average_order_value"`
	}{plainOrderStats(s), Money(s.TotalRevenue), Money(s.AverageOrderValue)})
}
