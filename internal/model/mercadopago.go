package model

// MPPreference is the subset of the checkout preference response we use.
type MPPreference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// MPPayment mirrors the /v1/payments/{id} response fields the webhook
// handler needs to resolve the outcome of a notification.
type MPPayment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"` // approved, rejected, cancelled, pending, in_process
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"` // carries our payment id
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
	Payer             MPPayer `json:"payer"`
	Card              MPCard  `json:"card"`
}

type MPPayer struct {
	Email string `json:"email"`
}

type MPCard struct {
	LastFourDigits string `json:"last_four_digits"`
}

// MPWebhookNotification is the IPN body MercadoPago posts; only payment
// topics carry a data id worth resolving.
type MPWebhookNotification struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"` // "payment"
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}
