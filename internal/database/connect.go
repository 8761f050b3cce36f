package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection      = "products"
	ordersCollection        = "orders"
	orderItemsCollection    = "order_items"
	emailFailuresCollection = "email_failures"
	countersCollection      = "counters"
)

var ErrNotFound = errors.New("not found")

// Connect dials MongoDB with the decimal-aware registry and pings it. The
// deployment must be a replica set: order writes run in transactions.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetRegistry(NewRegistry()).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(5)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// EnsureCollections creates the collections and id counters up front.
// Documents cannot be written to a missing collection inside a snapshot
// transaction.
func EnsureCollections(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("ListCollectionNames: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range []string{productsCollection, ordersCollection, orderItemsCollection, emailFailuresCollection, countersCollection} {
		if have[name] {
			continue
		}
		if err := db.CreateCollection(ctx, name); err != nil {
			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
				continue
			}
			return fmt.Errorf("CreateCollection %s: %w", name, err)
		}
		log.Println("EnsureCollections: created", name)
	}
	return EnsureCounters(ctx, db)
}
