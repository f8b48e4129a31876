package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"go-propmarket/models"
)

// RazorpayClient implements Client against the Razorpay Orders API.
type RazorpayClient struct {
	client  *razorpay.Client
	timeout time.Duration
}

func NewRazorpayClient(keyID, keySecret string, timeout time.Duration) *RazorpayClient {
	return &RazorpayClient{
		client:  razorpay.NewClient(keyID, keySecret),
		timeout: timeout,
	}
}

// CreateOrder creates an order in Razorpay. The SDK has no context support,
// so the call runs in a goroutine bounded by the configured timeout; a timeout
// surfaces as a retryable upstream failure.
func (c *RazorpayClient) CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error) {
	data := map[string]interface{}{
		"amount":   in.AmountMinor,
		"currency": in.Currency,
		"receipt":  in.Receipt,
	}

	type createResult struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan createResult, 1)
	go func() {
		body, err := c.client.Order.Create(data, nil)
		ch <- createResult{body: body, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return Order{}, fmt.Errorf("%w: razorpay order create: %v", models.ErrUpstreamUnavailable, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return Order{}, fmt.Errorf("%w: razorpay order create: %v", models.ErrUpstreamUnavailable, res.err)
		}
		return orderFromBody(res.body), nil
	}
}

func orderFromBody(body map[string]interface{}) Order {
	return Order{
		ID:       stringField(body, "id"),
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case int64:
		return v
	default:
		return 0
	}
}
