package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/config"
	"donaciones-backend/internal/model"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

type PaypalClient interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, returnURL, cancelURL string) (*PaypalCreateOrderResponse, error)
	CaptureOrder(ctx context.Context, orderID string) (*PaypalCaptureResult, error)
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

type paypalClientImpl struct {
	httpClient   *http.Client
	baseApiURL   string
	clientID     string
	clientSecret string
	webhookID    string
}

type PaypalCreateOrderResponse struct {
	OrderID    string
	ApproveURL string
}

type PaypalCaptureResult struct {
	Status     string
	PayerID    string
	PayerEmail string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:   paypalCfg.BaseApiURL,
		clientID:     paypalCfg.ClientID,
		clientSecret: paypalCfg.ClientSecret,
		webhookID:    paypalCfg.WebhookID,
	}
}

func backoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
}

// doJSON runs one provider call with retries on network failures and 5xx
// responses. Exhausted retries surface as ErrProviderUnavailable; a 4xx
// answer is the provider refusing the request and surfaces as the terminal
// ErrPaymentRejected.
func (c *paypalClientImpl) doJSON(ctx context.Context, method, url string, headers map[string]string, payload []byte, out interface{}) (int, error) {
	var status int
	var respBody []byte

	err := retry.Do(ctx, backoff(), func(ctx context.Context) error {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("http new request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("paypal %d: %s", resp.StatusCode, string(respBody)))
		}

		status = resp.StatusCode
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperr.ErrProviderUnavailable, err)
	}

	if status >= 400 {
		return status, fmt.Errorf("%w: paypal error %d: %s", apperr.ErrPaymentRejected, status, string(respBody))
	}

	if out != nil && status >= 200 && status < 300 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return status, fmt.Errorf("decode paypal response: %w", err)
		}
	}

	return status, nil
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	var res struct {
		AccessToken string `json:"access_token"`
	}
	_, err := c.doJSON(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		map[string]string{
			"Authorization": "Basic " + auth,
			"Content-Type":  "application/x-www-form-urlencoded",
		},
		[]byte("grant_type=client_credentials"), &res)
	if err != nil {
		return "", err
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", apperr.ErrProviderUnavailable)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, returnURL, cancelURL string) (*PaypalCreateOrderResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": currency,
					"value":         amount.StringFixed(2),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": returnURL,
			"cancel_url": cancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	var result struct {
		ID     string             `json:"id"`
		Status string             `json:"status"`
		Links  []model.PaypalLink `json:"links"`
	}
	_, err = c.doJSON(ctx, http.MethodPost, c.baseApiURL+"/v2/checkout/orders",
		map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Content-Type":  "application/json",
		},
		body, &result)
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	return &PaypalCreateOrderResponse{
		OrderID:    result.ID,
		ApproveURL: extractApproveURL(result.Links),
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, orderID string) (*PaypalCaptureResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseApiURL, orderID)

	var result struct {
		Status string            `json:"status"`
		Payer  model.PaypalPayer `json:"payer"`
	}
	_, err = c.doJSON(ctx, http.MethodPost, url,
		map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Content-Type":  "application/json",
		},
		nil, &result)
	if err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}

	return &PaypalCaptureResult{
		Status:     result.Status,
		PayerID:    result.Payer.PayerID,
		PayerEmail: result.Payer.Email,
	}, nil
}

// VerifyWebhookSignature delegates authenticity of a webhook delivery to
// PayPal's verification endpoint. Payloads are never trusted without it.
func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal verification payload: %w", err)
	}

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	_, err = c.doJSON(ctx, http.MethodPost, c.baseApiURL+"/v1/notifications/verify-webhook-signature",
		map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Content-Type":  "application/json",
		},
		reqBody, &result)
	if err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	if result.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("webhook signature verification failed: %s", result.VerificationStatus)
	}

	return nil
}

func extractApproveURL(links []model.PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
