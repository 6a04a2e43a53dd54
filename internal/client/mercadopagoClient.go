package client

import (
	"bytes"
	"context"
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

type MercadoPagoClient interface {
	CreatePreference(ctx context.Context, externalReference, title string, amount decimal.Decimal, currency, successURL, failureURL string) (*model.MPPreference, error)
	GetPayment(ctx context.Context, paymentID string) (*model.MPPayment, error)
}

type mercadoPagoClientImpl struct {
	httpClient  *http.Client
	baseApiURL  string
	accessToken string
}

func NewMercadoPagoClient(mpCfg *config.MercadoPago) MercadoPagoClient {
	return &mercadoPagoClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:  mpCfg.BaseApiURL,
		accessToken: mpCfg.AccessToken,
	}
}

func (c *mercadoPagoClientImpl) do(ctx context.Context, method, url string, payload []byte, out interface{}) error {
	var respBody []byte
	var status int

	err := retry.Do(ctx, backoff(), func(ctx context.Context) error {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("http new request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("Content-Type", "application/json")

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
			return retry.RetryableError(fmt.Errorf("mercado pago %d: %s", resp.StatusCode, string(respBody)))
		}

		status = resp.StatusCode
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrProviderUnavailable, err)
	}

	if status < 200 || status >= 300 {
		// the provider answered and refused; retrying will not help
		return fmt.Errorf("%w: mercado pago error %d: %s", apperr.ErrPaymentRejected, status, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode mercado pago response: %w", err)
		}
	}

	return nil
}

func (c *mercadoPagoClientImpl) CreatePreference(ctx context.Context, externalReference, title string, amount decimal.Decimal, currency, successURL, failureURL string) (*model.MPPreference, error) {
	unitPrice, _ := amount.Float64()

	payload := map[string]interface{}{
		"external_reference": externalReference,
		"items": []map[string]interface{}{
			{
				"title":       title,
				"quantity":    1,
				"unit_price":  unitPrice,
				"currency_id": currency,
			},
		},
		"back_urls": map[string]string{
			"success": successURL,
			"failure": failureURL,
			"pending": successURL,
		},
		"auto_return": "approved",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal preference payload: %w", err)
	}

	var pref model.MPPreference
	if err := c.do(ctx, http.MethodPost, c.baseApiURL+"/checkout/preferences", body, &pref); err != nil {
		return nil, fmt.Errorf("mercado pago create preference: %w", err)
	}

	return &pref, nil
}

func (c *mercadoPagoClientImpl) GetPayment(ctx context.Context, paymentID string) (*model.MPPayment, error) {
	var payment model.MPPayment
	url := fmt.Sprintf("%s/v1/payments/%s", c.baseApiURL, paymentID)
	if err := c.do(ctx, http.MethodGet, url, nil, &payment); err != nil {
		return nil, fmt.Errorf("mercado pago get payment: %w", err)
	}

	return &payment, nil
}
