package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vegorder/internal/models"
)

type OrderRepository struct {
	db *mongo.Database
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) orders() *mongo.Collection {
	return r.db.Collection(ordersCollection)
}

func (r *OrderRepository) items() *mongo.Collection {
	return r.db.Collection(orderItemsCollection)
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID int64) (models.OrderWithItems, error) {
	var o models.OrderWithItems

	err := r.orders().FindOne(ctx, bson.M{"_id": orderID}).Decode(&o.Order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return o, fmt.Errorf("orders.FindOne(%d): %w", orderID, ErrNotFound)
	}
	if err != nil {
		return o, fmt.Errorf("orders.FindOne(%d): %w", orderID, err)
	}

	byOrder, err := r.itemsByOrder(ctx, []int64{orderID})
	if err != nil {
		return o, err
	}
	o.Items = itemsOrEmpty(byOrder[orderID])
	return o, nil
}

// ListOrders returns one page of orders, newest first, each with its items,
// and the number of orders matching the filter.
func (r *OrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.OrderWithItems, int64, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	total, err := r.orders().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("orders.CountDocuments: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(filter.Offset)
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.orders().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("orders.Find: %w", err)
	}
	var page []models.Order
	if err := cursor.All(ctx, &page); err != nil {
		return nil, 0, fmt.Errorf("orders.All: %w", err)
	}

	orderIDs := lo.Map(page, func(o models.Order, _ int) int64 {
		return o.ID
	})
	byOrder, err := r.itemsByOrder(ctx, orderIDs)
	if err != nil {
		return nil, 0, err
	}

	out := lo.Map(page, func(o models.Order, _ int) models.OrderWithItems {
		return models.OrderWithItems{Order: o, Items: itemsOrEmpty(byOrder[o.ID])}
	})
	return out, total, nil
}

func (r *OrderRepository) itemsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[int64][]models.OrderItem{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.items().Find(ctx, bson.M{"orderId": bson.M{"$in": orderIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("order_items.Find: %w", err)
	}

	var items []models.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("order_items.All: %w", err)
	}

	return lo.GroupBy(items, func(item models.OrderItem) int64 {
		return item.OrderID
	}), nil
}

func itemsOrEmpty(items []models.OrderItem) []models.OrderItem {
	if items == nil {
		return []models.OrderItem{}
	}
	return items
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (models.Order, error) {
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.orders().FindOneAndUpdate(ctx, bson.M{"_id": orderID}, update, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return o, fmt.Errorf("orders.FindOneAndUpdate(%d): %w", orderID, ErrNotFound)
	}
	if err != nil {
		return o, fmt.Errorf("orders.FindOneAndUpdate(%d): %w", orderID, err)
	}
	return o, nil
}

// DeleteOrder removes the order and its items in one transaction and returns
// the deleted order.
func (r *OrderRepository) DeleteOrder(ctx context.Context, orderID int64) (models.Order, error) {
	var deleted models.Order

	err := withTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		err := r.orders().FindOneAndDelete(sessCtx, bson.M{"_id": orderID}).Decode(&deleted)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("orders.FindOneAndDelete(%d): %w", orderID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("orders.FindOneAndDelete(%d): %w", orderID, err)
		}

		if _, err := r.items().DeleteMany(sessCtx, bson.M{"orderId": orderID}); err != nil {
			return fmt.Errorf("order_items.DeleteMany(%d): %w", orderID, err)
		}
		return nil
	})
	return deleted, err
}

func (r *OrderRepository) OrderStats(ctx context.Context) (models.OrderStats, error) {
	countStatus := func(status models.OrderStatus) bson.M {
		return bson.M{"$sum": bson.M{
			"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0},
		}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"totalOrders":       bson.M{"$sum": 1},
			"pendingOrders":     countStatus(models.OrderStatusPending),
			"confirmedOrders":   countStatus(models.OrderStatusConfirmed),
			"deliveredOrders":   countStatus(models.OrderStatusDelivered),
			"totalRevenue":      bson.M{"$sum": "$totalAmount"},
			"averageOrderValue": bson.M{"$avg": "$totalAmount"},
		}}},
	}

	cursor, err := r.orders().Aggregate(ctx, pipeline)
	if err != nil {
		return models.OrderStats{}, fmt.Errorf("orders.Aggregate: %w", err)
	}

	var rows []models.OrderStats
	if err := cursor.All(ctx, &rows); err != nil {
		return models.OrderStats{}, fmt.Errorf("orders.All: %w", err)
	}
	if len(rows) == 0 {
		return models.OrderStats{}, nil
	}

	stats := rows[0]
	stats.AverageOrderValue = stats.AverageOrderValue.Round(2)
	return stats, nil
}
