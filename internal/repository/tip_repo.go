package repository

import (
	"context"
	"time"

	"market-tips/internal/model"

	"gorm.io/gorm"
)

type TradingTipRepository interface {
	CreateBulk(ctx context.Context, tips []model.TradingTip) error
	Get(ctx context.Context, param model.GetTipsParam) ([]model.TradingTip, int64, error)
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
}

type tradingTipRepository struct {
	db *gorm.DB
}

func NewTradingTipRepository(db *gorm.DB) TradingTipRepository {
	return &tradingTipRepository{db: db}
}

func (r *tradingTipRepository) CreateBulk(ctx context.Context, tips []model.TradingTip) error {
	if len(tips) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(tips, 100).Error
}

func (r *tradingTipRepository) Get(ctx context.Context, param model.GetTipsParam) ([]model.TradingTip, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.TradingTip{})

	if param.AssetType != "" {
		query = query.Where("asset_type = ?", param.AssetType)
	}
	if !param.Since.IsZero() {
		query = query.Where("generated_at >= ?", param.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tips []model.TradingTip
	err := query.Order("generated_at DESC").
		Offset(param.Skip).
		Limit(param.Limit).
		Find(&tips).Error
	if err != nil {
		return nil, 0, err
	}

	return tips, total, nil
}

func (r *tradingTipRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("generated_at < ?", date).
		Delete(&model.TradingTip{})
	return result.RowsAffected, result.Error
}
