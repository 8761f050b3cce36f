package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"vegorder/internal/models"
)

//go:embed order_email.html
var orderEmailHTML string

var orderEmailTemplate = template.Must(template.New("order_email").Funcs(template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("02.01.2006")
	},
	"clock": func(t time.Time) string {
		return t.Format("15:04")
	},
	"money": func(d decimal.Decimal) string {
		return "€" + models.Money(d)
	},
}).Parse(orderEmailHTML))

type orderEmailData struct {
	Order models.Order
	Items []models.OrderItem
}

func orderSubject(order models.Order) string {
	return fmt.Sprintf("Vegetable order #%d - %s", order.ID, order.CreatedAt.Format("02.01.2006"))
}

func renderOrderEmail(order models.Order, items []models.OrderItem) (string, error) {
	var buf bytes.Buffer
	if err := orderEmailTemplate.Execute(&buf, orderEmailData{Order: order, Items: items}); err != nil {
		return "", fmt.Errorf("render order email: %w", err)
	}
	return buf.String(), nil
}
