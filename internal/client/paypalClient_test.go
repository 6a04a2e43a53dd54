package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaypalStub(t *testing.T, ordersStatus int, ordersBody string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1"}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ordersStatus)
		w.Write([]byte(ordersBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newStubbedPaypalClient(srv *httptest.Server) PaypalClient {
	return NewPaypalClient(&config.Paypal{
		BaseApiURL:   srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
}

func TestPaypalCreateOrderExtractsApproveLink(t *testing.T) {
	srv := newPaypalStub(t, http.StatusCreated,
		`{"id":"ORD-1","status":"CREATED","links":[`+
			`{"rel":"self","href":"https://paypal.example.com/self"},`+
			`{"rel":"approve","href":"https://paypal.example.com/approve"}]}`)

	c := newStubbedPaypalClient(srv)

	resp, err := c.CreateOrder(context.Background(), decimal.RequireFromString("250.00"),
		"MXN", "http://localhost:4000/ok", "http://localhost:4000/no")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", resp.OrderID)
	assert.Equal(t, "https://paypal.example.com/approve", resp.ApproveURL)
}

func TestPaypalCreateOrderRejectionIsTerminal(t *testing.T) {
	srv := newPaypalStub(t, http.StatusBadRequest, `{"name":"INVALID_REQUEST"}`)

	c := newStubbedPaypalClient(srv)

	_, err := c.CreateOrder(context.Background(), decimal.RequireFromString("250.00"),
		"MXN", "http://localhost:4000/ok", "http://localhost:4000/no")
	require.ErrorIs(t, err, apperr.ErrPaymentRejected)
	assert.NotErrorIs(t, err, apperr.ErrProviderUnavailable)
}
