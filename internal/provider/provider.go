// Package provider normalizes the disparate PayPal and MercadoPago request
// and response shapes into one internal contract. The payment orchestrator
// depends only on the Provider interface, never on a concrete gateway.
package provider

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest carries everything a gateway needs to initiate a
// payment. PaymentID travels to the provider as the external reference so
// webhook notifications can be traced back to our record.
type CreateOrderRequest struct {
	PaymentID   string
	Description string
	Amount      decimal.Decimal
	Currency    string
	ReturnURL   string
	CancelURL   string
}

// OrderRef is the provider-specific handle for an initiated payment
// (PayPal order id, MercadoPago preference id).
type OrderRef struct {
	Ref        string
	ApproveURL string
}

type CaptureResult struct {
	// Status is already mapped to the internal payment status set.
	Status     string
	PayerEmail string
}

// WebhookEvent is a verified, provider-neutral view of one notification.
// Status is empty when the event carries no state transition.
type WebhookEvent struct {
	EventID   string
	EventType string

	// OrderRef or PaymentID identifies the affected payment; PayPal events
	// carry the order reference, MercadoPago ones our external reference.
	OrderRef  string
	PaymentID string

	Status            string
	PayerEmail        string
	CardSuffix        string
	ProviderPaymentID string
}

type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderRef, error)
	Capture(ctx context.Context, orderRef string) (*CaptureResult, error)
	ParseWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error)
}
