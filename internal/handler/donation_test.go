package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/dto"
	"donaciones-backend/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDonationService struct {
	createResp *model.Donation
	createErr  error

	getResp *model.Donation
	getErr  error

	listResp []*model.Donation
	listErr  error

	attachResp  *dto.UploadResponse
	attachErr   error
	attachCalls int

	evidenceResp []*model.EvidenceFile
	evidenceErr  error
}

func (s *stubDonationService) Create(ctx context.Context, req *dto.CreateDonationRequest) (*model.Donation, error) {
	return s.createResp, s.createErr
}

func (s *stubDonationService) Get(ctx context.Context, id string) (*model.Donation, error) {
	return s.getResp, s.getErr
}

func (s *stubDonationService) List(ctx context.Context) ([]*model.Donation, error) {
	return s.listResp, s.listErr
}

func (s *stubDonationService) ListByUser(ctx context.Context, userID string) ([]*model.Donation, error) {
	return s.listResp, s.listErr
}

func (s *stubDonationService) AttachEvidence(ctx context.Context, donationID string, files []*multipart.FileHeader) (*dto.UploadResponse, error) {
	s.attachCalls++
	return s.attachResp, s.attachErr
}

func (s *stubDonationService) ListEvidence(ctx context.Context, donationID string) ([]*model.EvidenceFile, error) {
	return s.evidenceResp, s.evidenceErr
}

func TestCreateDonationReturns201WithID(t *testing.T) {
	monto := decimal.RequireFromString("250.00")
	svc := &stubDonationService{
		createResp: &model.Donation{
			ID:     "don-1",
			UserID: "u1",
			Kind:   model.KindMonetaria,
			Amount: decimal.NewNullDecimal(monto),
		},
	}
	h := NewDonationHandler(svc, 5)

	body, _ := json.Marshal(dto.CreateDonationRequest{
		IDUsuario: "u1",
		Tipo:      "monetaria",
		Monto:     &monto,
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/donaciones", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Create(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.DonationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "don-1", resp.IDDonacion)
	assert.Equal(t, "monetaria", resp.Tipo)
}

func TestCreateDonationValidationErrorPropagates(t *testing.T) {
	svc := &stubDonationService{createErr: apperr.Validation("tipo de donación inválido")}
	h := NewDonationHandler(svc, 5)

	body, _ := json.Marshal(dto.CreateDonationRequest{IDUsuario: "u1", Tipo: "otro"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/donaciones", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.Create(e.NewContext(req, rec))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func multipartRequest(t *testing.T, field string, fileCount int) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i := 0; i < fileCount; i++ {
		fw, err := w.CreateFormFile(field, "foto.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("imagen"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/donaciones/don-1/evidencias", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func uploadContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("don-1")
	return c
}

func TestUploadEvidenceRejectsTooManyFiles(t *testing.T) {
	svc := &stubDonationService{}
	h := NewDonationHandler(svc, 5)

	e := echo.New()
	rec := httptest.NewRecorder()
	err := h.UploadEvidence(uploadContext(e, multipartRequest(t, "evidencias", 6), rec))

	require.ErrorIs(t, err, apperr.ErrTooManyFiles)
	assert.Zero(t, svc.attachCalls)
}

func TestUploadEvidenceRejectsUnexpectedField(t *testing.T) {
	svc := &stubDonationService{}
	h := NewDonationHandler(svc, 5)

	e := echo.New()
	rec := httptest.NewRecorder()
	err := h.UploadEvidence(uploadContext(e, multipartRequest(t, "archivos", 1), rec))

	require.ErrorIs(t, err, apperr.ErrUnexpectedField)
	assert.Zero(t, svc.attachCalls)
}

func TestListEvidenceReturnsStoredFiles(t *testing.T) {
	svc := &stubDonationService{
		evidenceResp: []*model.EvidenceFile{
			{FileName: "1-aa.jpg", OriginalName: "foto.jpg", Path: "evidencias/1-aa.jpg", Size: 6, URL: "/evidencias/1-aa.jpg"},
		},
	}
	h := NewDonationHandler(svc, 5)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/donaciones/don-1/evidencias", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListEvidence(uploadContext(e, req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.EvidenceListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Archivos, 1)
	assert.Equal(t, "1-aa.jpg", resp.Archivos[0].Archivo)
	assert.Equal(t, "/evidencias/1-aa.jpg", resp.Archivos[0].URL)
}

func TestUploadEvidenceAcceptsBatch(t *testing.T) {
	svc := &stubDonationService{
		attachResp: &dto.UploadResponse{
			Archivos:     []dto.UploadedFile{{Archivo: "1-aa.jpg", URL: "/evidencias/1-aa.jpg"}},
			EvidenciaURL: "/evidencias/1-aa.jpg",
		},
	}
	h := NewDonationHandler(svc, 5)

	e := echo.New()
	rec := httptest.NewRecorder()
	require.NoError(t, h.UploadEvidence(uploadContext(e, multipartRequest(t, "evidencias", 3), rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, svc.attachCalls)

	var resp dto.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/evidencias/1-aa.jpg", resp.EvidenciaURL)
}
