package port

import (
	"context"

	"github.com/shopspring/decimal"

	"vegorder/internal/models"
)

// OrderTx is the set of writes and reads that take part in one order
// transaction. Implementations must not be used after the enclosing
// WithinTransaction call returns.
type OrderTx interface {
	FindProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	InsertOrderItems(ctx context.Context, items []models.OrderItem) error
	RecordProductUsage(ctx context.Context, productID int64, quantity decimal.Decimal) error
}

// OrderStore commits everything fn did when it returns nil and discards it
// otherwise. fn may run more than once if the store retries a transient
// conflict.
type OrderStore interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx OrderTx) error) error
	InsertEmailFailure(ctx context.Context, failure *models.EmailFailure) error
}

type OrderNotifier interface {
	SendOrderNotification(ctx context.Context, order models.Order, items []models.OrderItem) error
}

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID int64) (models.OrderWithItems, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.OrderWithItems, int64, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) (models.Order, error)
	OrderStats(ctx context.Context) (models.OrderStats, error)
}
