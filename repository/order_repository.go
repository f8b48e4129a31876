package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-propmarket/models"
)

// OrderRepository persists orders in MongoDB. A unique index on
// remote_order_id guarantees exactly one local order per gateway order, which
// the payment verifier relies on for safe reconciliation.
type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(ctx context.Context, db *mongo.Database) (*OrderRepository, error) {
	coll := db.Collection("orders")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "remote_order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create order indexes: %w", err)
	}
	return &OrderRepository{coll: coll}, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	res, err := r.coll.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateRemoteOrder
	}
	if err != nil {
		return fmt.Errorf("%w: insert order: %v", models.ErrUpstreamUnavailable, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find order: %v", models.ErrUpstreamUnavailable, err)
	}
	return &order, nil
}

// FindByRemoteOrderID returns (nil, nil) when no order references the remote
// order id; callers decide whether that is an error.
func (r *OrderRepository) FindByRemoteOrderID(ctx context.Context, remoteOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"remote_order_id": remoteOrderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find order by remote id: %v", models.ErrUpstreamUnavailable, err)
	}
	return &order, nil
}

// FindByIdempotencyKey returns (nil, nil) when the buyer has no order for the
// given client-supplied key.
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, buyerID primitive.ObjectID, key string) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"buyer_id": buyerID, "idempotency_key": key}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find order by idempotency key: %v", models.ErrUpstreamUnavailable, err)
	}
	return &order, nil
}

func (r *OrderRepository) FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find orders: %v", models.ErrUpstreamUnavailable, err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("%w: decode orders: %v", models.ErrUpstreamUnavailable, err)
	}
	return orders, nil
}

// MarkPaid atomically transitions an order from created to paid, recording
// the gateway payment id. The filter pins both the remote order id and the
// created status so concurrent callback retries cannot both win; when no
// document matches it returns (nil, nil) and the caller classifies the miss.
func (r *OrderRepository) MarkPaid(ctx context.Context, remoteOrderID, paymentID string) (*models.Order, error) {
	filter := bson.M{
		"remote_order_id": remoteOrderID,
		"status":          models.OrderStatusCreated,
	}
	update := bson.M{"$set": bson.M{
		"status":     models.OrderStatusPaid,
		"payment_id": paymentID,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: mark order paid: %v", models.ErrUpstreamUnavailable, err)
	}
	return &order, nil
}
