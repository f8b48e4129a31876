// Package gateway wraps the payment gateway used to collect buyer payments.
package gateway

import "context"

// Order is the remote order created in the gateway's own system. Its ID is
// the reference the local order keeps for reconciliation, and the payload is
// handed back to the client so it can initialize the payment widget.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor currency units (e.g. paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrderInput describes the remote order to create. Amounts are in the
// gateway's minor currency unit.
type CreateOrderInput struct {
	AmountMinor int64
	Currency    string
	Receipt     string
}

// Client creates orders in the payment gateway.
type Client interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error)
}
