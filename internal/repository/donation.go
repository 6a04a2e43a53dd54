package repository

import (
	"context"
	"errors"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/model"

	"gorm.io/gorm"
)

type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	FindByID(ctx context.Context, id string) (*model.Donation, error)
	FindAll(ctx context.Context) ([]*model.Donation, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Donation, error)
	SetEvidenceURL(ctx context.Context, tx *gorm.DB, id, url string) error
}

type donationRepoImpl struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepoImpl{db: db}
}

func (r *donationRepoImpl) Create(ctx context.Context, donation *model.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepoImpl) FindByID(ctx context.Context, id string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donation).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &donation, nil
}

func (r *donationRepoImpl) FindAll(ctx context.Context) ([]*model.Donation, error) {
	var donations []*model.Donation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&donations).Error

	if err != nil {
		return nil, err
	}

	return donations, nil
}

func (r *donationRepoImpl) FindByUserID(ctx context.Context, userID string) ([]*model.Donation, error) {
	var donations []*model.Donation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&donations).Error

	if err != nil {
		return nil, err
	}

	return donations, nil
}

func (r *donationRepoImpl) SetEvidenceURL(ctx context.Context, tx *gorm.DB, id, url string) error {
	result := tx.WithContext(ctx).Model(&model.Donation{}).
		Where("id = ?", id).
		Update("evidence_url", url)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
