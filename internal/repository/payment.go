package repository

import (
	"context"
	"errors"
	"time"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByID(ctx context.Context, id string) (*model.Payment, error)
	FindByOrderRef(ctx context.Context, orderRef string) (*model.Payment, error)
	MarkPending(ctx context.Context, tx *gorm.DB, id, orderRef string) error
	// Transition moves a non-terminal payment into the given status and
	// reports whether a row actually changed. A zero count on an existing
	// payment means the transition was already applied.
	Transition(ctx context.Context, tx *gorm.DB, id, status string, detail PaymentDetail) (bool, error)
}

// PaymentDetail carries the provider-specific blob recorded alongside a
// status transition.
type PaymentDetail struct {
	PayerEmail        string
	CardSuffix        string
	ProviderPaymentID string
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{db: db}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindByOrderRef(ctx context.Context, orderRef string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("order_ref = ?", orderRef).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) MarkPending(ctx context.Context, tx *gorm.DB, id, orderRef string) error {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.StatusCreated).
		Updates(map[string]interface{}{
			"order_ref":  orderRef,
			"status":     model.StatusPending,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *paymentRepoImpl) Transition(ctx context.Context, tx *gorm.DB, id, status string, detail PaymentDetail) (bool, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if detail.PayerEmail != "" {
		updates["payer_email"] = detail.PayerEmail
	}
	if detail.CardSuffix != "" {
		updates["card_suffix"] = detail.CardSuffix
	}
	if detail.ProviderPaymentID != "" {
		updates["provider_payment_id"] = detail.ProviderPaymentID
	}

	// terminal rows never match, which makes replayed transitions no-ops
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status IN ?", id, []string{model.StatusCreated, model.StatusPending}).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
