package handler

import (
	"fmt"
	"net/http"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/dto"
	"donaciones-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("cuerpo de solicitud inválido")
	}
	if req.IDDonacion == "" {
		return apperr.Validation("id_donacion es requerido")
	}

	invoice, err := h.invoiceService.Create(ctx, req.IDDonacion)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, &dto.InvoiceResponse{
		IDFactura:  invoice.ID,
		IDDonacion: invoice.DonationID,
		RFC:        invoice.TaxID,
		Subtotal:   invoice.Subtotal,
		IVA:        invoice.Tax,
		Total:      invoice.Total,
	})
}

// Download streams the invoice for a donation in the requested rendition.
func (h *InvoiceHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()

	invoice, err := h.invoiceService.GetByDonation(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	switch c.QueryParam("formato") {
	case "pdf":
		out, err := h.invoiceService.RenderPDF(invoice)
		if err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=factura-%s.pdf", invoice.ID))
		return c.Blob(http.StatusOK, "application/pdf", out)
	case "xml":
		out, err := h.invoiceService.RenderXML(invoice)
		if err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=factura-%s.xml", invoice.ID))
		return c.Blob(http.StatusOK, "application/xml", out)
	default:
		return apperr.Validation("formato debe ser pdf o xml")
	}
}
