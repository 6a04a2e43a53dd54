package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"donaciones-backend/internal/client"
	"donaciones-backend/internal/model"
)

type paypalProvider struct {
	client client.PaypalClient
}

func NewPaypal(c client.PaypalClient) Provider {
	return &paypalProvider{client: c}
}

func (p *paypalProvider) Name() string {
	return model.ProviderPaypal
}

func (p *paypalProvider) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderRef, error) {
	resp, err := p.client.CreateOrder(ctx, req.Amount, req.Currency, req.ReturnURL, req.CancelURL)
	if err != nil {
		return nil, fmt.Errorf("paypal api create order: %w", err)
	}

	return &OrderRef{
		Ref:        resp.OrderID,
		ApproveURL: resp.ApproveURL,
	}, nil
}

func (p *paypalProvider) Capture(ctx context.Context, orderRef string) (*CaptureResult, error) {
	resp, err := p.client.CaptureOrder(ctx, orderRef)
	if err != nil {
		return nil, fmt.Errorf("paypal api capture order: %w", err)
	}

	status := model.StatusPending
	if resp.Status == "COMPLETED" {
		status = model.StatusApproved
	}

	return &CaptureResult{
		Status:     status,
		PayerEmail: resp.PayerEmail,
	}, nil
}

func (p *paypalProvider) ParseWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	if err := p.client.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	var eventPayload model.PaypalWebhookEvent
	if err := json.Unmarshal(body, &eventPayload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	event := &WebhookEvent{
		EventID:           eventPayload.ID,
		EventType:         eventPayload.EventType,
		OrderRef:          eventPayload.Resource.SupplementaryData.RelatedIDs.OrderID,
		PayerEmail:        eventPayload.Resource.Payer.Email,
		ProviderPaymentID: eventPayload.Resource.ID,
	}

	switch eventPayload.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		event.Status = model.StatusApproved
	case "PAYMENT.CAPTURE.DENIED":
		event.Status = model.StatusFailed
	case "CHECKOUT.ORDER.APPROVED":
		// buyer approved, money not captured yet; stays PENDING
		event.OrderRef = eventPayload.Resource.ID
	}

	return event, nil
}
