package port

import (
	"context"

	"vegorder/internal/models"
)

type ProductRepository interface {
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, productID int64) (models.Product, error)
	LowStockProducts(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	UpdateStock(ctx context.Context, productID int64, update models.StockUpdate) (models.Product, error)
	StockReport(ctx context.Context) ([]models.CategoryStock, error)
}
