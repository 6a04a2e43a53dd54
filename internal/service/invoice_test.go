package service

import (
	"bytes"
	"context"
	"testing"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newInvoiceService(t *testing.T) (InvoiceService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := NewInvoiceService(
		repository.NewDonationRepository(db),
		repository.NewInvoiceRepository(db),
	)
	return svc, db
}

func seedDeductibleDonation(t *testing.T, db *gorm.DB, amount string) *model.Donation {
	t.Helper()

	donation := &model.Donation{
		ID:         "don-deducible",
		UserID:     "u1",
		Kind:       model.KindDeducible,
		Amount:     decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		TaxID:      "XAXX010101000",
		LegalName:  "Donantes Unidos SA de CV",
		TaxAddress: "Av. Reforma 100, CDMX",
	}
	require.NoError(t, db.Create(donation).Error)
	return donation
}

func TestCreateInvoiceComputesTaxBreakdown(t *testing.T) {
	svc, db := newInvoiceService(t)
	donation := seedDeductibleDonation(t, db, "250.00")

	invoice, err := svc.Create(context.Background(), donation.ID)
	require.NoError(t, err)

	// 250.00 total with 16% IVA included
	assert.Equal(t, "215.52", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "34.48", invoice.Tax.StringFixed(2))
	assert.Equal(t, "250.00", invoice.Total.StringFixed(2))
	assert.True(t, invoice.Subtotal.Add(invoice.Tax).Equal(invoice.Total))
}

func TestCreateInvoiceRejectsInKindDonation(t *testing.T) {
	svc, db := newInvoiceService(t)

	donation := &model.Donation{ID: "don-especie", UserID: "u1", Kind: model.KindEspecie}
	require.NoError(t, db.Create(donation).Error)

	_, err := svc.Create(context.Background(), donation.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateInvoiceRejectsMonetaryNonDeductible(t *testing.T) {
	svc, db := newInvoiceService(t)

	donation := &model.Donation{
		ID:     "don-monetaria",
		UserID: "u1",
		Kind:   model.KindMonetaria,
		Amount: decimal.NewNullDecimal(decimal.RequireFromString("100.00")),
	}
	require.NoError(t, db.Create(donation).Error)

	_, err := svc.Create(context.Background(), donation.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateInvoiceIsOnePerDonation(t *testing.T) {
	svc, db := newInvoiceService(t)
	donation := seedDeductibleDonation(t, db, "250.00")

	_, err := svc.Create(context.Background(), donation.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), donation.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateInvoiceLosingRaceGetsValidationError(t *testing.T) {
	svc, db := newInvoiceService(t)
	donation := seedDeductibleDonation(t, db, "250.00")

	_, err := svc.Create(context.Background(), donation.ID)
	require.NoError(t, err)

	// a second writer that missed the existence check lands on the unique
	// index and gets the same validation error, not a raw DB failure
	repo := repository.NewInvoiceRepository(db)
	err = repo.Create(context.Background(), &model.Invoice{
		ID:         "otra-factura",
		DonationID: donation.ID,
		TaxID:      donation.TaxID,
		LegalName:  donation.LegalName,
		Address:    donation.TaxAddress,
		Subtotal:   decimal.RequireFromString("215.52"),
		Tax:        decimal.RequireFromString("34.48"),
		Total:      decimal.RequireFromString("250.00"),
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateInvoiceUnknownDonation(t *testing.T) {
	svc, _ := newInvoiceService(t)

	_, err := svc.Create(context.Background(), "no-existe")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRenderXMLCarriesReceiverData(t *testing.T) {
	svc, db := newInvoiceService(t)
	donation := seedDeductibleDonation(t, db, "250.00")

	invoice, err := svc.Create(context.Background(), donation.ID)
	require.NoError(t, err)

	out, err := svc.RenderXML(invoice)
	require.NoError(t, err)

	assert.Contains(t, string(out), "XAXX010101000")
	assert.Contains(t, string(out), "<total>250.00</total>")
}

func TestRenderPDFProducesDocument(t *testing.T) {
	svc, db := newInvoiceService(t)
	donation := seedDeductibleDonation(t, db, "250.00")

	invoice, err := svc.Create(context.Background(), donation.ID)
	require.NoError(t, err)

	out, err := svc.RenderPDF(invoice)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
