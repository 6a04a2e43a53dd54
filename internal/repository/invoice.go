package repository

import (
	"context"
	"errors"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByDonationID(ctx context.Context, donationID string) (*model.Invoice, error)
	ExistsForDonation(ctx context.Context, donationID string) (bool, error)
}

type invoiceRepoImpl struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepoImpl{db: db}
}

// Create inserts the invoice. The unique index on donation_id holds the
// one-invoice-per-donation invariant; a writer losing that race gets the
// same validation error as the existence check.
func (r *invoiceRepoImpl) Create(ctx context.Context, invoice *model.Invoice) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(invoice)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.Validation("la donación ya tiene factura")
	}

	return nil
}

func (r *invoiceRepoImpl) FindByDonationID(ctx context.Context, donationID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationID).
		First(&invoice).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepoImpl) ExistsForDonation(ctx context.Context, donationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("donation_id = ?", donationID).
		Count(&count).Error

	return count > 0, err
}
