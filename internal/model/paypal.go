package model

type PaypalPayer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address"`
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PaypalAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PaypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount PaypalAmount `json:"amount"`
}

type PaypalPayments struct {
	Captures []PaypalCapture `json:"captures"`
}

type PaypalPurchaseUnit struct {
	ReferenceID string         `json:"reference_id"`
	Payments    PaypalPayments `json:"payments"`
}

type PaypalRelatedIDs struct {
	OrderID string `json:"order_id"`
}

type PaypalSupplementaryData struct {
	RelatedIDs PaypalRelatedIDs `json:"related_ids"`
}

type PaypalResource struct {
	ID                string                  `json:"id"`
	Status            string                  `json:"status"`
	Payer             PaypalPayer             `json:"payer"`
	PurchaseUnits     []PaypalPurchaseUnit    `json:"purchase_units"`
	SupplementaryData PaypalSupplementaryData `json:"supplementary_data"`
}

type PaypalWebhookEvent struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	CreateTime string         `json:"create_time"`
	Resource   PaypalResource `json:"resource"`
}
