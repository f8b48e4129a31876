// Package services holds the order/payment business rules behind narrow
// store and gateway interfaces so they can be exercised without MongoDB or
// Razorpay.
package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-propmarket/gateway"
	"go-propmarket/models"
	"go-propmarket/utils"
)

// PropertyFinder resolves properties from the catalog store.
type PropertyFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
}

// UserFinder resolves user accounts.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// OrderStore persists orders. FindByRemoteOrderID, FindByIdempotencyKey and
// MarkPaid return (nil, nil) when nothing matches; MarkPaid must perform the
// created->paid transition as a single atomic find-and-update.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByRemoteOrderID(ctx context.Context, remoteOrderID string) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, buyerID primitive.ObjectID, key string) (*models.Order, error)
	FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error)
	MarkPaid(ctx context.Context, remoteOrderID, paymentID string) (*models.Order, error)
}

// OrderService owns the order lifecycle: it is the only component that
// creates orders, and its payment verifier is the only component that
// mutates their status.
type OrderService struct {
	orders        OrderStore
	properties    PropertyFinder
	users         UserFinder
	gateway       gateway.Client
	webhookSecret string
	currency      string
	log           logrus.FieldLogger
	now           func() time.Time
}

func NewOrderService(orders OrderStore, properties PropertyFinder, users UserFinder, gw gateway.Client, webhookSecret, currency string, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		orders:        orders,
		properties:    properties,
		users:         users,
		gateway:       gw,
		webhookSecret: webhookSecret,
		currency:      currency,
		log:           log,
		now:           time.Now,
	}
}

type CreateOrderInput struct {
	BuyerID    primitive.ObjectID
	PropertyID primitive.ObjectID
	// IdempotencyKey is optional. When supplied and the buyer already has an
	// order for it, that order is returned instead of charging again.
	IdempotencyKey string
}

type CreateOrderResult struct {
	Order       models.Order
	RemoteOrder gateway.Order
	Created     bool
}

// CreateOrder prices a property purchase and opens a matching order in the
// payment gateway. The total is the property price plus the tiered admin
// margin, both snapshotted on the local order before it is persisted in
// created state.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if in.IdempotencyKey != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, in.BuyerID, in.IdempotencyKey)
		if err != nil {
			return CreateOrderResult{}, err
		}
		if existing != nil {
			return CreateOrderResult{
				Order: *existing,
				RemoteOrder: gateway.Order{
					ID:       existing.RemoteOrderID,
					Amount:   minorUnits(existing.Amount),
					Currency: s.currency,
				},
				Created: false,
			}, nil
		}
	}

	property, err := s.properties.FindByID(ctx, in.PropertyID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	margin, err := utils.MarginFor(property.Price)
	if err != nil {
		return CreateOrderResult{}, err
	}
	amount := property.Price + margin

	receipt := fmt.Sprintf("order_%d_%s", s.now().UnixMilli(), uuid.NewString()[:8])
	remote, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderInput{
		AmountMinor: minorUnits(amount),
		Currency:    s.currency,
		Receipt:     receipt,
	})
	if err != nil {
		return CreateOrderResult{}, err
	}

	order := models.Order{
		RemoteOrderID:  remote.ID,
		BuyerID:        in.BuyerID,
		PropertyID:     in.PropertyID,
		Amount:         amount,
		AdminMargin:    margin,
		Status:         models.OrderStatusCreated,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      s.now(),
	}
	if err := s.orders.Insert(ctx, &order); err != nil {
		// The remote order exists but no local record does. Surface the id
		// so an out-of-band sweep can reconcile it.
		s.log.WithFields(logrus.Fields{
			"remote_order_id": remote.ID,
			"receipt":         receipt,
		}).Warn("remote order created without local record")
		return CreateOrderResult{}, err
	}

	return CreateOrderResult{Order: order, RemoteOrder: remote, Created: true}, nil
}

type VerifyPaymentInput struct {
	RemoteOrderID string
	PaymentID     string
	Signature     string
}

// VerifyPayment reconciles a gateway callback with the local order state.
// Only a signature matching the exact HMAC derivation mutates anything; on a
// mismatch the order is left untouched. Re-verifying an already paid order
// with the same payment id is a no-op success.
func (s *OrderService) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (models.Order, error) {
	if !gateway.VerifySignature(s.webhookSecret, in.RemoteOrderID, in.PaymentID, in.Signature) {
		return models.Order{}, models.ErrInvalidSignature
	}

	updated, err := s.orders.MarkPaid(ctx, in.RemoteOrderID, in.PaymentID)
	if err != nil {
		return models.Order{}, err
	}
	if updated != nil {
		return *updated, nil
	}

	existing, err := s.orders.FindByRemoteOrderID(ctx, in.RemoteOrderID)
	if err != nil {
		return models.Order{}, err
	}
	if existing == nil {
		return models.Order{}, models.ErrOrderNotFound
	}
	if existing.Status == models.OrderStatusPaid && existing.PaymentID == in.PaymentID {
		return *existing, nil
	}
	return models.Order{}, models.ErrPaymentMismatch
}

// PropertySummary carries the property fields resolved for display.
type PropertySummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Price float64            `json:"price"`
}

// BuyerSummary carries the buyer fields resolved for display.
type BuyerSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// OrderView is an order with its property and buyer resolved for display.
type OrderView struct {
	models.Order
	Property PropertySummary `json:"property"`
	Buyer    BuyerSummary    `json:"buyer"`
}

// ListOrders returns a buyer's orders newest-first. A buyer with no orders
// gets an empty slice.
func (s *OrderService) ListOrders(ctx context.Context, buyerID primitive.ObjectID) ([]OrderView, error) {
	orders, err := s.orders.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, s.resolve(ctx, order))
	}
	return views, nil
}

// GetOrder returns a single order with display fields resolved.
func (s *OrderService) GetOrder(ctx context.Context, id primitive.ObjectID) (OrderView, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return OrderView{}, err
	}
	return s.resolve(ctx, *order), nil
}

// resolve fills in display summaries. A missing property or buyer (e.g. a
// listing deleted after purchase) degrades to an id-only summary rather than
// failing the read.
func (s *OrderService) resolve(ctx context.Context, order models.Order) OrderView {
	view := OrderView{
		Order:    order,
		Property: PropertySummary{ID: order.PropertyID},
		Buyer:    BuyerSummary{ID: order.BuyerID},
	}
	if property, err := s.properties.FindByID(ctx, order.PropertyID); err == nil {
		view.Property.Name = property.Name
		view.Property.Price = property.Price
	}
	if buyer, err := s.users.FindByID(ctx, order.BuyerID); err == nil {
		view.Buyer.Name = buyer.Name
		view.Buyer.Email = buyer.Email
	}
	return view
}

// minorUnits converts an amount to the gateway's subdivided currency unit
// (e.g. rupees to paise).
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
