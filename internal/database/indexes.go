package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(productsCollection).Indexes()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_index"),
		},
		{
			Keys:    bson.D{{Key: "isAvailable", Value: 1}},
			Options: options.Index().SetName("isAvailable_index"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetName("type_index"),
		},
	}

	log.Println("EnsureProductIndexes: creating category/isAvailable/type indexes")
	if _, err := indexes.CreateMany(ctx, indexModels); err != nil {
		log.Println("EnsureProductIndexes: index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: indexes created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(ordersCollection).Indexes()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_index"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_index"),
		},
	}

	log.Println("EnsureOrderIndexes: creating status/createdAt indexes")
	if _, err := indexes.CreateMany(ctx, indexModels); err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: indexes created")
	return nil
}

func EnsureOrderItemIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(orderItemsCollection).Indexes()

	orderIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetName("orderId_index"),
	}

	log.Println("EnsureOrderItemIndexes: creating orderId_index index")
	if _, err := indexes.CreateOne(ctx, orderIDIndex); err != nil {
		log.Println("EnsureOrderItemIndexes: orderId index error:", err)
		return err
	}
	log.Println("EnsureOrderItemIndexes: orderId_index index created")
	return nil
}

func EnsureEmailFailureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(emailFailuresCollection).Indexes()

	orderIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetName("orderId_index"),
	}

	log.Println("EnsureEmailFailureIndexes: creating orderId_index index")
	if _, err := indexes.CreateOne(ctx, orderIDIndex); err != nil {
		log.Println("EnsureEmailFailureIndexes: orderId index error:", err)
		return err
	}
	log.Println("EnsureEmailFailureIndexes: orderId_index index created")
	return nil
}
