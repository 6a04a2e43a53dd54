package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"donaciones-backend/internal/client"
	"donaciones-backend/internal/model"
)

type mercadoPagoProvider struct {
	client client.MercadoPagoClient
}

func NewMercadoPago(c client.MercadoPagoClient) Provider {
	return &mercadoPagoProvider{client: c}
}

func (p *mercadoPagoProvider) Name() string {
	return model.ProviderMercadoPago
}

func (p *mercadoPagoProvider) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderRef, error) {
	pref, err := p.client.CreatePreference(ctx, req.PaymentID, req.Description, req.Amount, req.Currency, req.ReturnURL, req.CancelURL)
	if err != nil {
		return nil, fmt.Errorf("mercado pago api create preference: %w", err)
	}

	return &OrderRef{
		Ref:        pref.ID,
		ApproveURL: pref.InitPoint,
	}, nil
}

// Capture is a no-op for MercadoPago: checkout preferences settle on the
// provider side and the outcome arrives exclusively via webhook.
func (p *mercadoPagoProvider) Capture(ctx context.Context, orderRef string) (*CaptureResult, error) {
	return &CaptureResult{Status: model.StatusPending}, nil
}

// ParseWebhook resolves the notification against the payments API instead
// of trusting the delivered body; the fetch doubles as the authenticity
// check since notification ids are opaque.
func (p *mercadoPagoProvider) ParseWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	var notification model.MPWebhookNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	if notification.Type != "payment" || notification.Data.ID == "" {
		// topics other than payment are acknowledged and ignored
		return &WebhookEvent{
			EventID:   fmt.Sprintf("MP-%d", notification.ID),
			EventType: notification.Type,
		}, nil
	}

	payment, err := p.client.GetPayment(ctx, notification.Data.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve notified payment: %w", err)
	}

	event := &WebhookEvent{
		EventID:           fmt.Sprintf("MP-%s-%s", notification.Action, notification.Data.ID),
		EventType:         notification.Action,
		PaymentID:         payment.ExternalReference,
		PayerEmail:        payment.Payer.Email,
		CardSuffix:        payment.Card.LastFourDigits,
		ProviderPaymentID: notification.Data.ID,
	}

	switch payment.Status {
	case "approved":
		event.Status = model.StatusApproved
	case "rejected":
		event.Status = model.StatusFailed
	case "cancelled":
		event.Status = model.StatusCancelled
	}

	return event, nil
}
