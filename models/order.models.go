package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order. Transitions are
// one-directional: created -> paid (created -> failed is reserved).
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// Order links a local purchase to an order created in the payment gateway.
// Amount and AdminMargin are snapshots taken at creation time; later property
// price changes do not affect existing orders. PaymentID is set if and only if
// Status is paid.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RemoteOrderID  string             `bson:"remote_order_id" json:"remote_order_id"`
	PaymentID      string             `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	BuyerID        primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	PropertyID     primitive.ObjectID `bson:"property_id" json:"property_id"`
	Amount         float64            `bson:"amount" json:"amount"`
	AdminMargin    float64            `bson:"admin_margin" json:"admin_margin"`
	Status         OrderStatus        `bson:"status" json:"status"`
	IdempotencyKey string             `bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
