package repository

import (
	"context"
	"time"

	"market-tips/internal/model"

	"gorm.io/gorm"
)

type MarketDataRepository interface {
	CreateBulk(ctx context.Context, snapshots []model.MarketDataSnapshot) error
	GetLatest(ctx context.Context) ([]model.MarketDataSnapshot, error)
	GetLatestBySymbol(ctx context.Context, symbol string) (*model.MarketDataSnapshot, error)
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
}

type marketDataRepository struct {
	db *gorm.DB
}

func NewMarketDataRepository(db *gorm.DB) MarketDataRepository {
	return &marketDataRepository{db: db}
}

func (r *marketDataRepository) CreateBulk(ctx context.Context, snapshots []model.MarketDataSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(snapshots, 100).Error
}

// GetLatest returns the newest snapshot for every symbol.
func (r *marketDataRepository) GetLatest(ctx context.Context) ([]model.MarketDataSnapshot, error) {
	var snapshots []model.MarketDataSnapshot
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (symbol) * FROM market_data ORDER BY symbol, fetched_at DESC`).
		Scan(&snapshots).Error
	return snapshots, err
}

func (r *marketDataRepository) GetLatestBySymbol(ctx context.Context, symbol string) (*model.MarketDataSnapshot, error) {
	var snapshot model.MarketDataSnapshot
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("fetched_at DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *marketDataRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("fetched_at < ?", date).
		Delete(&model.MarketDataSnapshot{})
	return result.RowsAffected, result.Error
}
