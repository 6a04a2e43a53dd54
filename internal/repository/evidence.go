package repository

import (
	"context"

	"donaciones-backend/internal/model"

	"gorm.io/gorm"
)

type EvidenceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *model.EvidenceFile) error
	FindByDonationID(ctx context.Context, donationID string) ([]*model.EvidenceFile, error)
}

type evidenceRepoImpl struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &evidenceRepoImpl{db: db}
}

func (r *evidenceRepoImpl) Create(ctx context.Context, tx *gorm.DB, file *model.EvidenceFile) error {
	return tx.WithContext(ctx).Create(file).Error
}

func (r *evidenceRepoImpl) FindByDonationID(ctx context.Context, donationID string) ([]*model.EvidenceFile, error) {
	var files []*model.EvidenceFile
	err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationID).
		Find(&files).Error

	if err != nil {
		return nil, err
	}

	return files, nil
}
