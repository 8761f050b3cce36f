package database_test

import (
	"context"
	"errors"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vegorder/internal/database"
	"vegorder/internal/models"
	"vegorder/internal/orders"
	"vegorder/internal/port"
)

type stubNotifier struct {
	err error
}

func (n stubNotifier) SendOrderNotification(context.Context, models.Order, []models.OrderItem) error {
	return n.err
}

func (s *storeSuite) TestDecimalRoundTrip() {
	ctx := s.T().Context()
	p := s.insertProduct(func(p *models.Product) {
		p.Price = dec("2.50")
		p.Stock = dec("12.75")
	})

	got, err := s.products.GetProduct(ctx, p.ID)
	s.Require().NoError(err)
	s.True(got.Price.Equal(dec("2.50")), "price %s", got.Price)
	s.True(got.Stock.Equal(dec("12.75")), "stock %s", got.Stock)

	var raw bson.M
	s.Require().NoError(s.db.Collection("products").FindOne(ctx, bson.M{"_id": p.ID}).Decode(&raw))
	s.IsType(primitive.Decimal128{}, raw["price"])
	s.IsType(primitive.Decimal128{}, raw["stock"])
}

func (s *storeSuite) TestDecimalDecodesLegacyNumbers() {
	ctx := s.T().Context()
	_, err := s.db.Collection("products").InsertOne(ctx, bson.M{
		"_id": int64(500), "name": "Leek", "price": 3.25, "unit": "kg",
		"isAvailable": true, "stock": int32(4), "used": int64(1), "needToOrder": nil,
	})
	s.Require().NoError(err)

	got, err := s.products.GetProduct(ctx, 500)
	s.Require().NoError(err)
	s.True(got.Price.Equal(dec("3.25")))
	s.True(got.Stock.Equal(dec("4")))
	s.True(got.Used.Equal(dec("1")))
	s.True(got.NeedToOrder.IsZero())
}

func (s *storeSuite) TestTransactionCommits() {
	ctx := s.T().Context()
	p := s.insertProduct(nil)

	var order models.Order
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx port.OrderTx) error {
		found, err := tx.FindProductsByIDs(ctx, []int64{p.ID, 9999})
		if err != nil {
			return err
		}
		s.Len(found, 1)

		order = models.Order{CustomerName: gofakeit.Name(), TotalAmount: dec("5.00"), TotalItems: dec("2"), Status: models.OrderStatusPending}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		items := []models.OrderItem{{OrderID: order.ID, ProductID: p.ID, ProductName: p.Name, Price: dec("2.50"), Quantity: dec("2"), TotalPrice: dec("5.00")}}
		if err := tx.InsertOrderItems(ctx, items); err != nil {
			return err
		}
		return tx.RecordProductUsage(ctx, p.ID, dec("2"))
	})
	s.Require().NoError(err)

	s.Equal(int64(1), order.ID)
	s.Equal(int64(1), s.count("orders", bson.M{}))
	s.Equal(int64(1), s.count("order_items", bson.M{"orderId": order.ID}))

	got, err := s.products.GetProduct(ctx, p.ID)
	s.Require().NoError(err)
	s.True(got.Used.Equal(dec("2")), "used %s", got.Used)
}

func (s *storeSuite) TestTransactionRollsBackEverything() {
	ctx := s.T().Context()
	p := s.insertProduct(nil)
	boom := errors.New("boom")

	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx port.OrderTx) error {
		order := models.Order{CustomerName: "Jane", Status: models.OrderStatusPending}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		if err := tx.InsertOrderItems(ctx, []models.OrderItem{{OrderID: order.ID, ProductID: p.ID}}); err != nil {
			return err
		}
		if err := tx.RecordProductUsage(ctx, p.ID, dec("1")); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	s.Zero(s.count("orders", bson.M{}))
	s.Zero(s.count("order_items", bson.M{}))
	s.Zero(s.counterSeq("orders"))
	s.Zero(s.counterSeq("order_items"))

	got, err := s.products.GetProduct(ctx, p.ID)
	s.Require().NoError(err)
	s.True(got.Used.IsZero())
}

func (s *storeSuite) TestCreateOrderAgainstMongo() {
	ctx := s.T().Context()
	tomatoes := s.insertProduct(func(p *models.Product) {
		p.Name = "Tomatoes"
		p.Price = dec("2.50")
	})
	svc := orders.NewService(s.store, stubNotifier{}, orders.Config{})

	res, err := svc.CreateOrder(ctx, orders.CreateOrderRequest{
		CustomerName: "Jane",
		Items:        []orders.CreateOrderItemRequest{{ProductID: tomatoes.ID, Quantity: dec("3")}},
	})
	s.Require().NoError(err)
	s.True(res.EmailSent)
	s.True(res.Order.TotalAmount.Equal(dec("7.50")))

	stored, err := s.orders.GetOrder(ctx, res.Order.ID)
	s.Require().NoError(err)
	s.True(stored.TotalAmount.Equal(dec("7.50")))
	s.Require().Len(stored.Items, 1)
	s.Equal("Tomatoes", stored.Items[0].ProductName)
	s.True(stored.Items[0].TotalPrice.Equal(dec("7.50")))
	s.WithinDuration(res.Order.CreatedAt, stored.CreatedAt, time.Millisecond)
}

func (s *storeSuite) TestCreateOrderUnknownProductStoresNothing() {
	ctx := s.T().Context()
	p := s.insertProduct(nil)
	svc := orders.NewService(s.store, stubNotifier{}, orders.Config{})

	_, err := svc.CreateOrder(ctx, orders.CreateOrderRequest{
		CustomerName: "Jane",
		Items: []orders.CreateOrderItemRequest{
			{ProductID: p.ID, Quantity: dec("1")},
			{ProductID: 999, Quantity: dec("1")},
		},
	})
	var notFound orders.ProductNotFoundError
	s.Require().ErrorAs(err, &notFound)
	s.Equal([]int64{999}, notFound.ProductIDs)

	s.Zero(s.count("orders", bson.M{}))
	s.Zero(s.count("order_items", bson.M{}))
}

func (s *storeSuite) TestCreateOrderRecordsEmailFailure() {
	ctx := s.T().Context()
	p := s.insertProduct(nil)
	svc := orders.NewService(s.store, stubNotifier{err: errors.New("smtp down")}, orders.Config{})

	email := gofakeit.Email()
	res, err := svc.CreateOrder(ctx, orders.CreateOrderRequest{
		CustomerName:  gofakeit.Name(),
		CustomerEmail: email,
		Items:         []orders.CreateOrderItemRequest{{ProductID: p.ID, Quantity: dec("1")}},
	})
	s.Require().NoError(err)
	s.False(res.EmailSent)

	var failure models.EmailFailure
	s.Require().NoError(s.db.Collection("email_failures").FindOne(ctx, bson.M{"orderId": res.Order.ID}).Decode(&failure))
	s.Equal(email, failure.Email)
	s.Equal("smtp down", failure.ErrorMessage)
	s.Equal(int64(1), s.count("email_failures", bson.M{}))
}

func (s *storeSuite) TestEnsureCountersKeepsExistingSequences() {
	ctx := s.T().Context()
	for _, name := range []string{"products", "orders", "order_items", "email_failures"} {
		s.Zero(s.counterSeq(name), name)
	}

	s.insertProduct(nil)
	s.insertProduct(nil)
	s.Require().NoError(database.EnsureCounters(ctx, s.db))
	s.Require().NoError(database.EnsureCollections(ctx, s.db))

	s.Equal(int64(2), s.counterSeq("products"))
	s.Equal(int64(4), s.count("counters", bson.M{}))
}

func (s *storeSuite) TestConcurrentOrdersOnSameProduct() {
	ctx := s.T().Context()
	p := s.insertProduct(nil)
	svc := orders.NewService(s.store, stubNotifier{}, orders.Config{})
	order := func() error {
		_, err := svc.CreateOrder(ctx, orders.CreateOrderRequest{
			CustomerName: gofakeit.Name(),
			Items:        []orders.CreateOrderItemRequest{{ProductID: p.ID, Quantity: decimal.NewFromInt(2)}},
		})
		return err
	}
	const n = 5
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			errs <- order()
		}()
	}
	for i := 0; i < n; i++ {
		s.NoError(<-errs)
	}

	s.Equal(int64(n), s.count("orders", bson.M{}))
	s.Equal(int64(n), s.counterSeq("orders"))
	got, err := s.products.GetProduct(ctx, p.ID)
	s.Require().NoError(err)
	s.True(got.Used.Equal(decimal.NewFromInt(2*n)), "used %s", got.Used)
}
