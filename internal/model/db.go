package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation kinds. Kind is fixed at creation and never mutated.
const (
	KindMonetaria = "MONETARIA"
	KindDeducible = "DEDUCIBLE"
	KindEspecie   = "ESPECIE"
)

// Payment providers.
const (
	ProviderPaypal      = "PAYPAL"
	ProviderMercadoPago = "MERCADO_PAGO"
)

// Payment statuses. A payment leaves PENDING only on a verified webhook
// or a capture response, never on client-asserted state.
const (
	StatusCreated   = "CREATED"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusCancelled = "CANCELLED"
	StatusFailed    = "FAILED"
)

// Terminal reports whether a payment status admits no further transitions.
func Terminal(status string) bool {
	switch status {
	case StatusApproved, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

type Donation struct {
	ID          string `gorm:"primaryKey;size:36;not null"`
	UserID      string `gorm:"size:36;index;not null"`
	Kind        string `gorm:"size:16;index;not null"` // MONETARIA, DEDUCIBLE, ESPECIE
	Amount      decimal.NullDecimal
	Currency    string `gorm:"size:8"`
	Description string `gorm:"size:512"`

	// datos fiscales, required before an invoice can be issued
	TaxID      string `gorm:"size:16"`
	LegalName  string `gorm:"size:256"`
	TaxAddress string `gorm:"size:512"`

	EvidenceURL string `gorm:"size:512"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EvidenceFile struct {
	ID           uint   `gorm:"primaryKey"`
	DonationID   string `gorm:"size:36;index;not null"`
	FileName     string `gorm:"size:128;uniqueIndex;not null"` // generated name
	OriginalName string `gorm:"size:256"`
	Path         string `gorm:"size:512;not null"`
	Size         int64  `gorm:"not null"`
	URL          string `gorm:"size:512;not null"`
	CreatedAt    time.Time
}

type Invoice struct {
	ID         string `gorm:"primaryKey;size:36;not null"`
	DonationID string `gorm:"size:36;uniqueIndex;not null"`

	TaxID     string `gorm:"size:16;not null"`
	LegalName string `gorm:"size:256;not null"`
	Address   string `gorm:"size:512;not null"`

	Subtotal decimal.Decimal `gorm:"not null"`
	Tax      decimal.Decimal `gorm:"not null"`
	Total    decimal.Decimal `gorm:"not null"`

	CreatedAt time.Time
}

type Payment struct {
	ID         string `gorm:"primaryKey;size:36;not null"`
	DonationID string `gorm:"size:36;index;not null"`
	Provider   string `gorm:"size:16;index;not null"` // PAYPAL, MERCADO_PAGO
	OrderRef   string `gorm:"size:64;uniqueIndex;not null"`

	Amount   decimal.Decimal `gorm:"not null"`
	Currency string          `gorm:"size:8;not null"`
	Status   string          `gorm:"size:16;index;not null"`

	// provider-specific detail
	PayerEmail        string `gorm:"size:256"`
	CardSuffix        string `gorm:"size:4"`
	ProviderPaymentID string `gorm:"size:64;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	Provider    string `gorm:"size:16;index"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
