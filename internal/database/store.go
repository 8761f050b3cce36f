package database

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"vegorder/internal/models"
	"vegorder/internal/port"
)

// Store is the MongoDB implementation of port.OrderStore.
type Store struct {
	db  *mongo.Database
	now func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db: db,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

func transactionOptions() *options.TransactionOptions {
	return options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
}

// WithinTransaction runs fn in a session transaction. The driver retries fn
// on transient transaction errors; any error fn returns aborts and is
// returned unchanged.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx port.OrderTx) error) error {
	return withTransaction(ctx, s.db, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx, &mongoTx{db: s.db, now: s.now})
	})
}

func withTransaction(ctx context.Context, db *mongo.Database, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("StartSession: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, transactionOptions())
	return err
}

func (s *Store) InsertEmailFailure(ctx context.Context, failure *models.EmailFailure) error {
	id, err := reserveIDs(ctx, s.db, emailFailuresCollection, 1)
	if err != nil {
		return err
	}
	failure.ID = id

	if _, err := s.db.Collection(emailFailuresCollection).InsertOne(ctx, failure); err != nil {
		return fmt.Errorf("email_failures.InsertOne: %w", err)
	}
	return nil
}

type mongoTx struct {
	db  *mongo.Database
	now func() time.Time
}

func (tx *mongoTx) FindProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	cursor, err := tx.db.Collection(productsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("products.Find: %w", err)
	}

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products.All: %w", err)
	}
	return products, nil
}

func (tx *mongoTx) InsertOrder(ctx context.Context, order *models.Order) error {
	id, err := reserveIDs(ctx, tx.db, ordersCollection, 1)
	if err != nil {
		return err
	}
	order.ID = id

	if _, err := tx.db.Collection(ordersCollection).InsertOne(ctx, order); err != nil {
		return fmt.Errorf("orders.InsertOne: %w", err)
	}
	return nil
}

func (tx *mongoTx) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	first, err := reserveIDs(ctx, tx.db, orderItemsCollection, int64(len(items)))
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ID = first + int64(i)
	}

	docs := lo.Map(items, func(item models.OrderItem, _ int) interface{} {
		return item
	})
	if _, err := tx.db.Collection(orderItemsCollection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("order_items.InsertMany: %w", err)
	}
	return nil
}

// RecordProductUsage adds quantity to the product's used counter. Two
// concurrent orders touching the same product conflict here and one of them
// is retried by the driver.
func (tx *mongoTx) RecordProductUsage(ctx context.Context, productID int64, quantity decimal.Decimal) error {
	res, err := tx.db.Collection(productsCollection).UpdateOne(
		ctx,
		bson.M{"_id": productID},
		bson.M{
			"$inc": bson.M{"used": quantity},
			"$set": bson.M{"updatedAt": tx.now()},
		},
	)
	if err != nil {
		return fmt.Errorf("products.UpdateOne: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("products.UpdateOne(%d): %w", productID, ErrNotFound)
	}
	return nil
}

// Ping checks that the primary answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}
