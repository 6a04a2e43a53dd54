package handler

import (
	"net/http"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/dto"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/service"

	"github.com/labstack/echo/v4"
)

// evidenceField is the only multipart field the upload pipeline accepts.
const evidenceField = "evidencias"

type DonationHandler struct {
	donationService service.DonationService
	maxFiles        int
}

func NewDonationHandler(donationService service.DonationService, maxFiles int) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		maxFiles:        maxFiles,
	}
}

func donationResponse(d *model.Donation) *dto.DonationResponse {
	resp := &dto.DonationResponse{
		IDDonacion:   d.ID,
		IDUsuario:    d.UserID,
		Tipo:         model.TipoFromKind(d.Kind),
		Moneda:       d.Currency,
		Descripcion:  d.Description,
		EvidenciaURL: d.EvidenceURL,
	}
	if d.Amount.Valid {
		monto := d.Amount.Decimal
		resp.Monto = &monto
	}
	if d.TaxID != "" {
		resp.DatosFiscales = &dto.DatosFiscales{
			RFC:         d.TaxID,
			RazonSocial: d.LegalName,
			Domicilio:   d.TaxAddress,
		}
	}
	return resp
}

func (h *DonationHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("cuerpo de solicitud inválido")
	}

	donation, err := h.donationService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, donationResponse(donation))
}

func (h *DonationHandler) Get(c echo.Context) error {
	donation, err := h.donationService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, donationResponse(donation))
}

func (h *DonationHandler) List(c echo.Context) error {
	donations, err := h.donationService.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, donationsResponse(donations))
}

func (h *DonationHandler) ListByUser(c echo.Context) error {
	donations, err := h.donationService.ListByUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, donationsResponse(donations))
}

func donationsResponse(donations []*model.Donation) []*dto.DonationResponse {
	out := make([]*dto.DonationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, donationResponse(d))
	}
	return out
}

func (h *DonationHandler) ListEvidence(c echo.Context) error {
	files, err := h.donationService.ListEvidence(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	resp := dto.EvidenceListResponse{Archivos: make([]dto.UploadedFile, 0, len(files))}
	for _, f := range files {
		resp.Archivos = append(resp.Archivos, dto.UploadedFile{
			Archivo:        f.FileName,
			NombreOriginal: f.OriginalName,
			Ruta:           f.Path,
			Tamano:         f.Size,
			URL:            f.URL,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// UploadEvidence accepts up to maxFiles image files on the evidencias
// multipart field and attaches them to the donation.
func (h *DonationHandler) UploadEvidence(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.MultipartForm()
	if err != nil {
		return apperr.ErrUploadFailed
	}

	for key := range form.File {
		if key != evidenceField {
			return apperr.ErrUnexpectedField
		}
	}

	files := form.File[evidenceField]
	if len(files) == 0 {
		return apperr.Validation("no se recibió ningún archivo")
	}
	if len(files) > h.maxFiles {
		return apperr.ErrTooManyFiles
	}

	resp, err := h.donationService.AttachEvidence(ctx, c.Param("id"), files)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}
