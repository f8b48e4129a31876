package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-propmarket/gateway"
	"go-propmarket/middleware"
	"go-propmarket/models"
	"go-propmarket/services"
	"go-propmarket/utils"
)

type fakeOrderFlow struct {
	createResult services.CreateOrderResult
	createErr    error
	createInput  services.CreateOrderInput

	verifyResult models.Order
	verifyErr    error

	listResult []services.OrderView
	listErr    error

	getResult services.OrderView
	getErr    error
}

func (f *fakeOrderFlow) CreateOrder(_ context.Context, in services.CreateOrderInput) (services.CreateOrderResult, error) {
	f.createInput = in
	return f.createResult, f.createErr
}

func (f *fakeOrderFlow) VerifyPayment(_ context.Context, _ services.VerifyPaymentInput) (models.Order, error) {
	return f.verifyResult, f.verifyErr
}

func (f *fakeOrderFlow) ListOrders(_ context.Context, _ primitive.ObjectID) ([]services.OrderView, error) {
	return f.listResult, f.listErr
}

func (f *fakeOrderFlow) GetOrder(_ context.Context, _ primitive.ObjectID) (services.OrderView, error) {
	return f.getResult, f.getErr
}

type fakeUserFinder struct{}

func (f *fakeUserFinder) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return &models.User{ID: id, Name: "Asha", Email: "asha@example.com"}, nil
}

func newOrderController(flow *fakeOrderFlow) *OrderController {
	logger, _ := logtest.NewNullLogger()
	return NewOrderController(flow, &fakeUserFinder{}, nil, "rzp_test_key", logger)
}

func authedRequest(method, target string, body []byte, claims *utils.Claims) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if claims != nil {
		ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
		req = req.WithContext(ctx)
	}
	return req
}

func buyerClaims() *utils.Claims {
	return &utils.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Email:  "asha@example.com",
		Role:   models.RoleBuyer,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestOrderController_CreateOrder(t *testing.T) {
	t.Parallel()

	t.Run("returns the remote order and widget key", func(t *testing.T) {
		flow := &fakeOrderFlow{
			createResult: services.CreateOrderResult{
				Order: models.Order{RemoteOrderID: "order_rzp_001", Status: models.OrderStatusCreated},
				RemoteOrder: gateway.Order{
					ID:       "order_rzp_001",
					Amount:   13440000,
					Currency: "INR",
				},
				Created: true,
			},
		}
		oc := newOrderController(flow)

		propertyID := primitive.NewObjectID()
		payload, _ := json.Marshal(map[string]string{"propertyId": propertyID.Hex()})
		rec := httptest.NewRecorder()
		oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", payload, buyerClaims()))

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "rzp_test_key", body["key"])
		order := body["order"].(map[string]interface{})
		assert.Equal(t, "order_rzp_001", order["id"])
		assert.Equal(t, propertyID, flow.createInput.PropertyID)
	})

	t.Run("idempotent replay returns 200", func(t *testing.T) {
		flow := &fakeOrderFlow{
			createResult: services.CreateOrderResult{
				Order:       models.Order{RemoteOrderID: "order_rzp_001"},
				RemoteOrder: gateway.Order{ID: "order_rzp_001"},
				Created:     false,
			},
		}
		oc := newOrderController(flow)

		payload, _ := json.Marshal(map[string]string{
			"propertyId":     primitive.NewObjectID().Hex(),
			"idempotencyKey": "client-key-1",
		})
		rec := httptest.NewRecorder()
		oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", payload, buyerClaims()))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "client-key-1", flow.createInput.IdempotencyKey)
	})

	t.Run("rejects a malformed property id", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{})

		payload, _ := json.Marshal(map[string]string{"propertyId": "not-an-id"})
		rec := httptest.NewRecorder()
		oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", payload, buyerClaims()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeInvalidArgument, decodeBody(t, rec)["code"])
	})

	t.Run("missing property maps to not_found", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{createErr: models.ErrPropertyNotFound})

		payload, _ := json.Marshal(map[string]string{"propertyId": primitive.NewObjectID().Hex()})
		rec := httptest.NewRecorder()
		oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", payload, buyerClaims()))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, codeNotFound, decodeBody(t, rec)["code"])
	})

	t.Run("gateway outage maps to upstream_failure", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{createErr: models.ErrUpstreamUnavailable})

		payload, _ := json.Marshal(map[string]string{"propertyId": primitive.NewObjectID().Hex()})
		rec := httptest.NewRecorder()
		oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", payload, buyerClaims()))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, codeUpstreamFailure, decodeBody(t, rec)["code"])
	})

	t.Run("requires authentication", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{})

		rec := httptest.NewRecorder()
		oc.CreateOrder(rec, authedRequest(http.MethodPost, "/api/orders", nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOrderController_VerifyPayment(t *testing.T) {
	t.Parallel()

	verifyPayload := func() []byte {
		payload, _ := json.Marshal(map[string]string{
			"razorpay_order_id":   "order_rzp_001",
			"razorpay_payment_id": "pay_001",
			"razorpay_signature":  "sig",
		})
		return payload
	}

	t.Run("returns the paid order", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{
			verifyResult: models.Order{
				RemoteOrderID: "order_rzp_001",
				PaymentID:     "pay_001",
				Status:        models.OrderStatusPaid,
			},
		})

		rec := httptest.NewRecorder()
		oc.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/orders/verify", verifyPayload(), buyerClaims()))

		require.Equal(t, http.StatusOK, rec.Code)
		order := decodeBody(t, rec)["order"].(map[string]interface{})
		assert.Equal(t, "paid", order["status"])
		assert.Equal(t, "pay_001", order["payment_id"])
	})

	t.Run("invalid signature maps to invalid_signature", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{verifyErr: models.ErrInvalidSignature})

		rec := httptest.NewRecorder()
		oc.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/orders/verify", verifyPayload(), buyerClaims()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeInvalidSignature, decodeBody(t, rec)["code"])
	})

	t.Run("unknown order maps to not_found", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{verifyErr: models.ErrOrderNotFound})

		rec := httptest.NewRecorder()
		oc.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/orders/verify", verifyPayload(), buyerClaims()))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("payment id conflict maps to conflict", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{verifyErr: models.ErrPaymentMismatch})

		rec := httptest.NewRecorder()
		oc.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/orders/verify", verifyPayload(), buyerClaims()))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{})

		payload, _ := json.Marshal(map[string]string{"razorpay_order_id": "order_rzp_001"})
		rec := httptest.NewRecorder()
		oc.VerifyPayment(rec, authedRequest(http.MethodPost, "/api/orders/verify", payload, buyerClaims()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrderController_GetOrders(t *testing.T) {
	t.Parallel()

	t.Run("empty order history is an empty list, not an error", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{listResult: []services.OrderView{}})

		rec := httptest.NewRecorder()
		oc.GetOrders(rec, authedRequest(http.MethodGet, "/api/orders", nil, buyerClaims()))

		require.Equal(t, http.StatusOK, rec.Code)
		orders, ok := decodeBody(t, rec)["orders"].([]interface{})
		require.True(t, ok)
		assert.Empty(t, orders)
	})

	t.Run("requires authentication", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{})

		rec := httptest.NewRecorder()
		oc.GetOrders(rec, authedRequest(http.MethodGet, "/api/orders", nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOrderController_GetOrderByID(t *testing.T) {
	t.Parallel()

	t.Run("returns the resolved order", func(t *testing.T) {
		orderID := primitive.NewObjectID()
		oc := newOrderController(&fakeOrderFlow{
			getResult: services.OrderView{
				Order:    models.Order{ID: orderID, Status: models.OrderStatusPaid},
				Property: services.PropertySummary{Name: "Sea View Villa"},
			},
		})

		req := authedRequest(http.MethodGet, "/api/orders/"+orderID.Hex(), nil, buyerClaims())
		req = mux.SetURLVars(req, map[string]string{"id": orderID.Hex()})
		rec := httptest.NewRecorder()
		oc.GetOrderByID(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		order := decodeBody(t, rec)["order"].(map[string]interface{})
		property := order["property"].(map[string]interface{})
		assert.Equal(t, "Sea View Villa", property["name"])
	})

	t.Run("missing order maps to not_found", func(t *testing.T) {
		oc := newOrderController(&fakeOrderFlow{getErr: models.ErrOrderNotFound})

		req := authedRequest(http.MethodGet, "/api/orders/x", nil, buyerClaims())
		req = mux.SetURLVars(req, map[string]string{"id": primitive.NewObjectID().Hex()})
		rec := httptest.NewRecorder()
		oc.GetOrderByID(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
