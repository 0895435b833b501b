package repository

import (
	"context"

	"market-tips/internal/model"

	"gorm.io/gorm"
)

type DeliveryLogRepository interface {
	Create(ctx context.Context, log *model.DeliveryLog) error
	GetRecent(ctx context.Context, limit int) ([]model.DeliveryLog, error)
}

type deliveryLogRepository struct {
	db *gorm.DB
}

func NewDeliveryLogRepository(db *gorm.DB) DeliveryLogRepository {
	return &deliveryLogRepository{db: db}
}

func (r *deliveryLogRepository) Create(ctx context.Context, log *model.DeliveryLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *deliveryLogRepository) GetRecent(ctx context.Context, limit int) ([]model.DeliveryLog, error) {
	var logs []model.DeliveryLog
	err := r.db.WithContext(ctx).
		Order("attempted_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
