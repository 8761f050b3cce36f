package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"vegorder/internal/models"
)

// CreateOrderItemRequest has no price or name: those always
// come from the product record.
type CreateOrderItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required,gt=0,lte=99999.99"`
}

type CreateOrderRequest struct {
	CustomerName    string                   `json:"customer_name" validate:"required,max=255"`
	CustomerEmail   string                   `json:"customer_email" validate:"omitempty,email,max=255"`
	CustomerPhone   string                   `json:"customer_phone" validate:"omitempty,max=50"`
	CustomerAddress string                   `json:"customer_address"`
	Notes           string                   `json:"notes"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`

	// set by DecodeCreateOrderRequest for fields of the wrong JSON type
	decodeErrors []fieldProblem
}

func (r CreateOrderRequest) normalized() CreateOrderRequest {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.CustomerAddress = strings.TrimSpace(r.CustomerAddress)
	r.Notes = strings.TrimSpace(r.Notes)
	return r
}

// Result is what a successful CreateOrder returns. EmailSent=false never
// means the order failed.
type Result struct {
	Order      models.Order       `json:"order"`
	Items      []models.OrderItem `json:"items"`
	EmailSent  bool               `json:"email_sent"`
	EmailError string             `json:"email_error,omitempty"`
}
