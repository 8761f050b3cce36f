package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type counter struct {
	Seq int64 `bson:"seq"`
}

var sequenceNames = []string{productsCollection, ordersCollection, orderItemsCollection, emailFailuresCollection}

// EnsureCounters creates every id sequence at zero without touching existing
// ones. It must run outside a transaction: an upsert that loses an insert race
// inside a transaction is not retried by the server.
func EnsureCounters(ctx context.Context, db *mongo.Database) error {
	opts := options.Update().SetUpsert(true)
	for _, name := range sequenceNames {
		_, err := db.Collection(countersCollection).UpdateOne(
			ctx,
			bson.M{"_id": name},
			bson.M{"$setOnInsert": bson.M{"seq": int64(0)}},
			opts,
		)
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("counters.UpdateOne(%s): %w", name, err)
		}
	}
	return nil
}

// reserveIDs advances the named sequence by n and returns the first id of the
// reserved block. Run inside a transaction, an abort gives the block back.
func reserveIDs(ctx context.Context, db *mongo.Database, name string, n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %d ids for %s", n, name)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c counter
	err := db.Collection(countersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": n}},
		opts,
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("counter %s is missing, run EnsureCounters first", name)
	}
	if err != nil {
		return 0, fmt.Errorf("counters.FindOneAndUpdate(%s): %w", name, err)
	}

	return c.Seq - n + 1, nil
}
