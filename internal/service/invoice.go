package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// ivaRate is the 16% VAT applied to tax-deductible donations. The donated
// total already includes it, so the subtotal is derived by division.
var ivaRate = decimal.NewFromFloat(0.16)

type InvoiceService interface {
	Create(ctx context.Context, donationID string) (*model.Invoice, error)
	GetByDonation(ctx context.Context, donationID string) (*model.Invoice, error)
	RenderPDF(invoice *model.Invoice) ([]byte, error)
	RenderXML(invoice *model.Invoice) ([]byte, error)
}

type invoiceServiceImpl struct {
	donationRepo repository.DonationRepository
	invoiceRepo  repository.InvoiceRepository
}

func NewInvoiceService(donationRepo repository.DonationRepository, invoiceRepo repository.InvoiceRepository) InvoiceService {
	return &invoiceServiceImpl{
		donationRepo: donationRepo,
		invoiceRepo:  invoiceRepo,
	}
}

func (s *invoiceServiceImpl) Create(ctx context.Context, donationID string) (*model.Invoice, error) {
	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		return nil, err
	}

	if donation.Kind != model.KindDeducible {
		return nil, apperr.Validation("solo las donaciones deducibles generan factura")
	}
	if donation.TaxID == "" || donation.LegalName == "" {
		return nil, apperr.Validation("la donación no tiene datos fiscales completos")
	}
	if !donation.Amount.Valid {
		return nil, apperr.Validation("la donación no tiene monto")
	}

	exists, err := s.invoiceRepo.ExistsForDonation(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("check existing invoice: %w", err)
	}
	if exists {
		return nil, apperr.Validation("la donación ya tiene factura")
	}

	total := donation.Amount.Decimal
	subtotal := total.Div(decimal.NewFromInt(1).Add(ivaRate)).Round(2)
	tax := total.Sub(subtotal)

	invoice := &model.Invoice{
		ID:         uuid.NewString(),
		DonationID: donation.ID,
		TaxID:      donation.TaxID,
		LegalName:  donation.LegalName,
		Address:    donation.TaxAddress,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("store invoice: %w", err)
	}

	return invoice, nil
}

func (s *invoiceServiceImpl) GetByDonation(ctx context.Context, donationID string) (*model.Invoice, error) {
	return s.invoiceRepo.FindByDonationID(ctx, donationID)
}

func (s *invoiceServiceImpl) RenderPDF(invoice *model.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Factura de donativo")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Folio: %s", invoice.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Donación: %s", invoice.DonationID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("RFC: %s", invoice.TaxID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Razón social: %s", invoice.LegalName))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Domicilio: %s", invoice.Address))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Subtotal: %s", invoice.Subtotal.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("IVA: %s", invoice.Tax.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Total: %s", invoice.Total.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}

	return buf.Bytes(), nil
}

type invoiceXML struct {
	XMLName    xml.Name `xml:"factura"`
	Folio      string   `xml:"folio"`
	IDDonacion string   `xml:"id_donacion"`
	RFC        string   `xml:"receptor>rfc"`
	Razon      string   `xml:"receptor>razon_social"`
	Domicilio  string   `xml:"receptor>domicilio"`
	Subtotal   string   `xml:"importes>subtotal"`
	IVA        string   `xml:"importes>iva"`
	Total      string   `xml:"importes>total"`
}

func (s *invoiceServiceImpl) RenderXML(invoice *model.Invoice) ([]byte, error) {
	doc := invoiceXML{
		Folio:      invoice.ID,
		IDDonacion: invoice.DonationID,
		RFC:        invoice.TaxID,
		Razon:      invoice.LegalName,
		Domicilio:  invoice.Address,
		Subtotal:   invoice.Subtotal.StringFixed(2),
		IVA:        invoice.Tax.StringFixed(2),
		Total:      invoice.Total.StringFixed(2),
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render invoice xml: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}
