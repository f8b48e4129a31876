// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-propmarket/middleware"
	"go-propmarket/models"
	"go-propmarket/services"
)

// OrderFlow is the slice of the order service the HTTP layer needs.
type OrderFlow interface {
	CreateOrder(ctx context.Context, in services.CreateOrderInput) (services.CreateOrderResult, error)
	VerifyPayment(ctx context.Context, in services.VerifyPaymentInput) (models.Order, error)
	ListOrders(ctx context.Context, buyerID primitive.ObjectID) ([]services.OrderView, error)
	GetOrder(ctx context.Context, id primitive.ObjectID) (services.OrderView, error)
}

// Mailer sends buyer notifications. May be nil when email is not configured.
type Mailer interface {
	SendPaymentConfirmation(toEmail string, order models.Order) error
}

// OrderController handles order creation, payment verification callbacks and
// order reads.
type OrderController struct {
	Service OrderFlow
	Users   services.UserFinder
	Email   Mailer
	KeyID   string
	Log     logrus.FieldLogger
}

func NewOrderController(service OrderFlow, users services.UserFinder, email Mailer, keyID string, log logrus.FieldLogger) *OrderController {
	return &OrderController{
		Service: service,
		Users:   users,
		Email:   email,
		KeyID:   keyID,
		Log:     log,
	}
}

// CreateOrder opens a payment-gateway order for a property purchase.
// POST /api/orders {propertyId, idempotencyKey?}
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid user identity")
		return
	}

	var req struct {
		PropertyID     string `json:"propertyId"`
		IdempotencyKey string `json:"idempotencyKey,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return
	}
	propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid property id")
		return
	}

	result, err := oc.Service.CreateOrder(r.Context(), services.CreateOrderInput{
		BuyerID:        buyerID,
		PropertyID:     propertyID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		oc.Log.WithError(err).WithField("property_id", req.PropertyID).Error("create order failed")
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]interface{}{
		"message": "Order created",
		"order":   result.RemoteOrder,
		"key":     oc.KeyID, // client widget needs the gateway's public key id
	})
}

// VerifyPayment reconciles a gateway payment callback with the local order.
// POST /api/orders/verify {razorpay_order_id, razorpay_payment_id, razorpay_signature}
func (oc *OrderController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RemoteOrderID string `json:"razorpay_order_id"`
		PaymentID     string `json:"razorpay_payment_id"`
		Signature     string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return
	}
	if req.RemoteOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "order id, payment id and signature are required")
		return
	}

	order, err := oc.Service.VerifyPayment(r.Context(), services.VerifyPaymentInput{
		RemoteOrderID: req.RemoteOrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
	})
	if err != nil {
		oc.Log.WithError(err).WithField("remote_order_id", req.RemoteOrderID).Warn("payment verification failed")
		writeDomainError(w, err)
		return
	}

	if oc.Email != nil {
		go oc.sendConfirmation(order)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Payment verified successfully",
		"order":   order,
	})
}

func (oc *OrderController) sendConfirmation(order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	buyer, err := oc.Users.FindByID(ctx, order.BuyerID)
	if err != nil {
		oc.Log.WithError(err).Error("resolve buyer for confirmation email")
		return
	}
	if err := oc.Email.SendPaymentConfirmation(buyer.Email, order); err != nil {
		oc.Log.WithError(err).WithField("email", buyer.Email).Error("send confirmation email")
	}
}

// GetOrders lists the authenticated buyer's orders, newest first.
// GET /api/orders
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	buyerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid user identity")
		return
	}

	orders, err := oc.Service.ListOrders(r.Context(), buyerID)
	if err != nil {
		oc.Log.WithError(err).Error("list orders failed")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// GetOrderByID returns a single order with property and buyer resolved.
// GET /api/orders/{id}
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid order id")
		return
	}

	order, err := oc.Service.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}
