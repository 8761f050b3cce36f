package database_test

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"vegorder/internal/database"
	"vegorder/internal/models"
	"vegorder/internal/port"
)

// seedOrder writes an order with one item per quantity straight through the
// store, bypassing pricing.
func (s *storeSuite) seedOrder(status models.OrderStatus, total string, createdAt time.Time, quantities ...string) models.Order {
	ctx := s.T().Context()
	p := s.insertProduct(nil)

	order := models.Order{
		CustomerName: gofakeit.Name(),
		TotalAmount:  dec(total),
		TotalItems:   decimal.Zero,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx port.OrderTx) error {
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		items := lo.Map(quantities, func(q string, _ int) models.OrderItem {
			return models.OrderItem{OrderID: order.ID, ProductID: p.ID, ProductName: p.Name, Price: p.Price, Quantity: dec(q), CreatedAt: createdAt}
		})
		return tx.InsertOrderItems(ctx, items)
	})
	s.Require().NoError(err)
	return order
}

func (s *storeSuite) TestListOrders() {
	ctx := s.T().Context()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	oldest := s.seedOrder(models.OrderStatusPending, "10.00", base, "1", "2")
	middle := s.seedOrder(models.OrderStatusDelivered, "20.00", base.Add(time.Hour), "3")
	newest := s.seedOrder(models.OrderStatusPending, "30.00", base.Add(2*time.Hour))

	all, total, err := s.orders.ListOrders(ctx, models.OrderFilter{Limit: 50})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Equal([]int64{newest.ID, middle.ID, oldest.ID}, lo.Map(all, func(o models.OrderWithItems, _ int) int64 { return o.ID }))
	s.Len(all[2].Items, 2)
	s.Len(all[1].Items, 1)
	s.NotNil(all[0].Items)
	s.Empty(all[0].Items)

	pending := models.OrderStatusPending
	page, total, err := s.orders.ListOrders(ctx, models.OrderFilter{Status: &pending, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Require().Len(page, 1)
	s.Equal(oldest.ID, page[0].ID)
}

func (s *storeSuite) TestGetOrderNotFound() {
	_, err := s.orders.GetOrder(s.T().Context(), 424242)
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *storeSuite) TestUpdateOrderStatus() {
	ctx := s.T().Context()
	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	o := s.seedOrder(models.OrderStatusPending, "5.00", created, "1")

	updated, err := s.orders.UpdateOrderStatus(ctx, o.ID, models.OrderStatusConfirmed)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusConfirmed, updated.Status)
	s.True(updated.UpdatedAt.After(created))

	_, err = s.orders.UpdateOrderStatus(ctx, 424242, models.OrderStatusConfirmed)
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *storeSuite) TestDeleteOrderCascades() {
	ctx := s.T().Context()
	keep := s.seedOrder(models.OrderStatusPending, "5.00", time.Now().UTC(), "1")
	drop := s.seedOrder(models.OrderStatusPending, "6.00", time.Now().UTC(), "1", "2")

	deleted, err := s.orders.DeleteOrder(ctx, drop.ID)
	s.Require().NoError(err)
	s.Equal(drop.ID, deleted.ID)

	s.Zero(s.count("orders", bson.M{"_id": drop.ID}))
	s.Zero(s.count("order_items", bson.M{"orderId": drop.ID}))
	s.Equal(int64(1), s.count("order_items", bson.M{"orderId": keep.ID}))

	_, err = s.orders.DeleteOrder(ctx, drop.ID)
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *storeSuite) TestOrderStats() {
	ctx := s.T().Context()

	empty, err := s.orders.OrderStats(ctx)
	s.Require().NoError(err)
	s.Zero(empty.TotalOrders)
	s.True(empty.TotalRevenue.IsZero())

	now := time.Now().UTC()
	s.seedOrder(models.OrderStatusPending, "10.00", now, "1")
	s.seedOrder(models.OrderStatusPending, "5.50", now, "1")
	s.seedOrder(models.OrderStatusConfirmed, "4.50", now, "1")
	s.seedOrder(models.OrderStatusDelivered, "1.00", now, "1")

	stats, err := s.orders.OrderStats(ctx)
	s.Require().NoError(err)
	s.Equal(int64(4), stats.TotalOrders)
	s.Equal(int64(2), stats.PendingOrders)
	s.Equal(int64(1), stats.ConfirmedOrders)
	s.Equal(int64(1), stats.DeliveredOrders)
	s.True(stats.TotalRevenue.Equal(dec("21.00")), "revenue %s", stats.TotalRevenue)
	s.True(stats.AverageOrderValue.Equal(dec("5.25")), "average %s", stats.AverageOrderValue)
}

func (s *storeSuite) TestListProductsFilters() {
	ctx := s.T().Context()
	s.insertProduct(func(p *models.Product) { p.Name = "Spinach"; p.Category = "leafy"; p.Type = "fresh" })
	s.insertProduct(func(p *models.Product) { p.Name = "Carrot"; p.Category = "root"; p.Type = "fresh" })
	s.insertProduct(func(p *models.Product) {
		p.Name = "Arugula"
		p.Category = "leafy"
		p.Type = "frozen"
		p.IsAvailable = false
	})

	all, err := s.products.ListProducts(ctx, models.ProductFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"Arugula", "Carrot", "Spinach"}, lo.Map(all, func(p models.Product, _ int) string { return p.Name }))

	available := true
	leafy, err := s.products.ListProducts(ctx, models.ProductFilter{Category: "leafy", Available: &available})
	s.Require().NoError(err)
	s.Require().Len(leafy, 1)
	s.Equal("Spinach", leafy[0].Name)

	frozen, err := s.products.ListProducts(ctx, models.ProductFilter{Type: "frozen"})
	s.Require().NoError(err)
	s.Require().Len(frozen, 1)
	s.Equal("Arugula", frozen[0].Name)

	categories, err := s.products.Categories(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"leafy", "root"}, categories)
}

func (s *storeSuite) TestLowStockAndReport() {
	ctx := s.T().Context()
	worst := s.insertProduct(func(p *models.Product) { p.Category = "root"; p.Stock = dec("2"); p.NeedToOrder = dec("10") })
	edge := s.insertProduct(func(p *models.Product) { p.Category = "root"; p.Stock = dec("10"); p.NeedToOrder = dec("10") })
	s.insertProduct(func(p *models.Product) { p.Category = "herb"; p.Stock = dec("50"); p.NeedToOrder = dec("10") })
	s.insertProduct(func(p *models.Product) {
		p.Category = "herb"
		p.Stock = dec("0")
		p.NeedToOrder = dec("10")
		p.IsAvailable = false
	})

	low, err := s.products.LowStockProducts(ctx)
	s.Require().NoError(err)
	s.Equal([]int64{worst.ID, edge.ID}, lo.Map(low, func(p models.Product, _ int) int64 { return p.ID }))
	s.True(low[0].Shortage().Equal(dec("8")))

	report, err := s.products.StockReport(ctx)
	s.Require().NoError(err)
	s.Require().Len(report, 2)
	s.Equal("herb", report[0].Category)
	s.Equal(int64(1), report[0].TotalProducts)
	s.Zero(report[0].LowStockCount)
	s.Equal("root", report[1].Category)
	s.Equal(int64(2), report[1].LowStockCount)
	s.True(report[1].TotalStock.Equal(dec("12")))
}

func (s *storeSuite) TestUpdateStock() {
	ctx := s.T().Context()
	p := s.insertProduct(func(p *models.Product) { p.Stock = dec("5"); p.Used = dec("1") })

	stock := dec("42.5")
	updated, err := s.products.UpdateStock(ctx, p.ID, models.StockUpdate{Stock: &stock})
	s.Require().NoError(err)
	s.True(updated.Stock.Equal(stock))
	s.True(updated.Used.Equal(dec("1")), "untouched counter changed")

	_, err = s.products.UpdateStock(ctx, 424242, models.StockUpdate{Stock: &stock})
	s.ErrorIs(err, database.ErrNotFound)
}
