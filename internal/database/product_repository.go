package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vegorder/internal/models"
)

type ProductRepository struct {
	db *mongo.Database
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) collection() *mongo.Collection {
	return r.db.Collection(productsCollection)
}

func (r *ProductRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Available != nil {
		query["isAvailable"] = *filter.Available
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("products.Find: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products.All: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID int64) (models.Product, error) {
	var product models.Product
	err := r.collection().FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return product, fmt.Errorf("products.FindOne(%d): %w", productID, ErrNotFound)
	}
	if err != nil {
		return product, fmt.Errorf("products.FindOne(%d): %w", productID, err)
	}
	return product, nil
}

// LowStockProducts lists available products at or below their reorder
// level, worst shortage first.
func (r *ProductRepository) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"isAvailable": true,
			"$expr":       bson.M{"$lte": bson.A{"$stock", "$needToOrder"}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"gap": bson.M{"$subtract": bson.A{"$stock", "$needToOrder"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "gap", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"gap": 0}}},
	}

	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("products.Aggregate: %w", err)
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products.All: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.collection().Distinct(ctx, "category", bson.M{
		"category": bson.M{"$nin": bson.A{nil, ""}},
	})
	if err != nil {
		return nil, fmt.Errorf("products.Distinct: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// UpdateStock overwrites the given stock counters and returns the updated
// product.
func (r *ProductRepository) UpdateStock(ctx context.Context, productID int64, update models.StockUpdate) (models.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if update.Stock != nil {
		set["stock"] = *update.Stock
	}
	if update.Used != nil {
		set["used"] = *update.Used
	}
	if update.NeedToOrder != nil {
		set["needToOrder"] = *update.NeedToOrder
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection().FindOneAndUpdate(ctx, bson.M{"_id": productID}, bson.M{"$set": set}, opts).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return product, fmt.Errorf("products.FindOneAndUpdate(%d): %w", productID, ErrNotFound)
	}
	if err != nil {
		return product, fmt.Errorf("products.FindOneAndUpdate(%d): %w", productID, err)
	}
	return product, nil
}

func (r *ProductRepository) StockReport(ctx context.Context) ([]models.CategoryStock, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isAvailable": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":              bson.M{"$ifNull": bson.A{"$category", ""}},
			"totalProducts":    bson.M{"$sum": 1},
			"totalStock":       bson.M{"$sum": "$stock"},
			"totalUsed":        bson.M{"$sum": "$used"},
			"totalNeedToOrder": bson.M{"$sum": "$needToOrder"},
			"lowStockCount": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$lte": bson.A{"$stock", "$needToOrder"}}, 1, 0},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("products.Aggregate: %w", err)
	}

	report := []models.CategoryStock{}
	if err := cursor.All(ctx, &report); err != nil {
		return nil, fmt.Errorf("products.All: %w", err)
	}
	return report, nil
}

// InsertProduct stores a product under a fresh id. Catalog management has no
// HTTP route; this serves seeding and tests.
func (r *ProductRepository) InsertProduct(ctx context.Context, product *models.Product) error {
	id, err := reserveIDs(ctx, r.db, productsCollection, 1)
	if err != nil {
		return err
	}
	product.ID = id

	now := time.Now().UTC().Truncate(time.Millisecond)
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if _, err := r.collection().InsertOne(ctx, product); err != nil {
		return fmt.Errorf("products.InsertOne: %w", err)
	}
	return nil
}
