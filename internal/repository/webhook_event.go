package repository

import (
	"context"
	"time"

	"donaciones-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, tx *gorm.DB, eventID, provider, eventType string) error
}

type webhookEventRepoImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepoImpl{db: db}
}

func (r *webhookEventRepoImpl) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error

	return count > 0, err
}

// MarkProcessed records the event id. A concurrent delivery that raced
// past the dedupe check lands on the primary key and is silently ignored,
// so both deliveries acknowledge.
func (r *webhookEventRepoImpl) MarkProcessed(ctx context.Context, tx *gorm.DB, eventID, provider, eventType string) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.WebhookEvent{
		EventID:     eventID,
		Provider:    provider,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}).Error
}
