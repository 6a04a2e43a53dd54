package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/dto"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/repository"
	"donaciones-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DonationService interface {
	Create(ctx context.Context, req *dto.CreateDonationRequest) (*model.Donation, error)
	Get(ctx context.Context, id string) (*model.Donation, error)
	List(ctx context.Context) ([]*model.Donation, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Donation, error)
	AttachEvidence(ctx context.Context, donationID string, files []*multipart.FileHeader) (*dto.UploadResponse, error)
	ListEvidence(ctx context.Context, donationID string) ([]*model.EvidenceFile, error)
}

type donationServiceImpl struct {
	db            *gorm.DB
	donationRepo  repository.DonationRepository
	evidenceRepo  repository.EvidenceRepository
	evidenceStore *storage.EvidenceStore
}

func NewDonationService(
	db *gorm.DB,
	donationRepo repository.DonationRepository,
	evidenceRepo repository.EvidenceRepository,
	evidenceStore *storage.EvidenceStore,
) DonationService {
	return &donationServiceImpl{
		db:            db,
		donationRepo:  donationRepo,
		evidenceRepo:  evidenceRepo,
		evidenceStore: evidenceStore,
	}
}

func (s *donationServiceImpl) Create(ctx context.Context, req *dto.CreateDonationRequest) (*model.Donation, error) {
	if req.IDUsuario == "" {
		return nil, apperr.Validation("id_usuario es requerido")
	}

	kind, ok := model.KindFromTipo(req.Tipo)
	if !ok {
		return nil, apperr.Validation("tipo de donación inválido")
	}

	var amount decimal.NullDecimal
	if kind == model.KindEspecie {
		// in-kind donations carry no amount, only evidence
		if req.Monto != nil {
			return nil, apperr.Validation("una donación en especie no lleva monto")
		}
	} else {
		if req.Monto == nil || req.Monto.LessThanOrEqual(decimal.Zero) {
			return nil, apperr.Validation("monto debe ser mayor a cero")
		}
		amount = decimal.NewNullDecimal(*req.Monto)
	}

	donation := &model.Donation{
		ID:          uuid.NewString(),
		UserID:      req.IDUsuario,
		Kind:        kind,
		Amount:      amount,
		Currency:    req.Moneda,
		Description: req.Descripcion,
		EvidenceURL: req.EvidenciaURL,
	}

	if kind == model.KindDeducible {
		if req.DatosFiscales == nil || req.DatosFiscales.RFC == "" || req.DatosFiscales.RazonSocial == "" {
			return nil, apperr.Validation("una donación deducible requiere datos fiscales completos")
		}
		donation.TaxID = req.DatosFiscales.RFC
		donation.LegalName = req.DatosFiscales.RazonSocial
		donation.TaxAddress = req.DatosFiscales.Domicilio
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("store donation: %w", err)
	}

	return donation, nil
}

func (s *donationServiceImpl) Get(ctx context.Context, id string) (*model.Donation, error) {
	return s.donationRepo.FindByID(ctx, id)
}

func (s *donationServiceImpl) List(ctx context.Context) ([]*model.Donation, error) {
	return s.donationRepo.FindAll(ctx)
}

func (s *donationServiceImpl) ListByUser(ctx context.Context, userID string) ([]*model.Donation, error) {
	return s.donationRepo.FindByUserID(ctx, userID)
}

func (s *donationServiceImpl) ListEvidence(ctx context.Context, donationID string) ([]*model.EvidenceFile, error) {
	if _, err := s.donationRepo.FindByID(ctx, donationID); err != nil {
		return nil, err
	}
	return s.evidenceRepo.FindByDonationID(ctx, donationID)
}

// AttachEvidence stores the accepted files and promotes the first one's URL
// onto the donation as its primary evidence reference.
func (s *donationServiceImpl) AttachEvidence(ctx context.Context, donationID string, files []*multipart.FileHeader) (*dto.UploadResponse, error) {
	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		return nil, err
	}

	stored := make([]*storage.StoredFile, 0, len(files))
	for _, fh := range files {
		sf, err := s.evidenceStore.Save(fh)
		if err != nil {
			return nil, err
		}
		stored = append(stored, sf)
	}

	resp := &dto.UploadResponse{}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sf := range stored {
			err := s.evidenceRepo.Create(ctx, tx, &model.EvidenceFile{
				DonationID:   donation.ID,
				FileName:     sf.FileName,
				OriginalName: sf.OriginalName,
				Path:         sf.Path,
				Size:         sf.Size,
				URL:          sf.URL,
			})
			if err != nil {
				return fmt.Errorf("store evidence metadata: %w", err)
			}
		}

		if len(stored) > 0 {
			if err := s.donationRepo.SetEvidenceURL(ctx, tx, donation.ID, stored[0].URL); err != nil {
				return fmt.Errorf("promote evidence url: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, sf := range stored {
		resp.Archivos = append(resp.Archivos, dto.UploadedFile{
			Archivo:        sf.FileName,
			NombreOriginal: sf.OriginalName,
			Ruta:           sf.Path,
			Tamano:         sf.Size,
			URL:            sf.URL,
		})
	}
	if len(stored) > 0 {
		resp.EvidenciaURL = stored[0].URL
	}

	return resp, nil
}
