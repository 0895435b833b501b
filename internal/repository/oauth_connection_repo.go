package repository

import (
	"context"
	"errors"

	"market-tips/internal/model"

	"gorm.io/gorm"
)

type OAuthConnectionRepository interface {
	Create(ctx context.Context, conn *model.OAuthConnection) error
	GetByProviderUser(ctx context.Context, provider, providerUserID string) (*model.OAuthConnection, error)
	GetByUserID(ctx context.Context, userID uint) ([]model.OAuthConnection, error)
	Update(ctx context.Context, conn *model.OAuthConnection) error
	DeleteByUserAndProvider(ctx context.Context, userID uint, provider string) (int64, error)
}

type oauthConnectionRepository struct {
	db *gorm.DB
}

func NewOAuthConnectionRepository(db *gorm.DB) OAuthConnectionRepository {
	return &oauthConnectionRepository{db: db}
}

func (r *oauthConnectionRepository) Create(ctx context.Context, conn *model.OAuthConnection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

func (r *oauthConnectionRepository) GetByProviderUser(ctx context.Context, provider, providerUserID string) (*model.OAuthConnection, error) {
	var conn model.OAuthConnection
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *oauthConnectionRepository) GetByUserID(ctx context.Context, userID uint) ([]model.OAuthConnection, error) {
	var conns []model.OAuthConnection
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&conns).Error
	return conns, err
}

func (r *oauthConnectionRepository) Update(ctx context.Context, conn *model.OAuthConnection) error {
	return r.db.WithContext(ctx).Save(conn).Error
}

func (r *oauthConnectionRepository) DeleteByUserAndProvider(ctx context.Context, userID uint, provider string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&model.OAuthConnection{})
	return result.RowsAffected, result.Error
}
