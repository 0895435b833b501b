package model

import "time"

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash    string    `gorm:"size:255" json:"-"` // empty for OAuth-only users
	Name            string    `gorm:"not null;size:255" json:"name"`
	IsEmailVerified bool      `gorm:"not null;default:false" json:"is_email_verified"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	OAuthConnections []OAuthConnection `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"oauth_connections,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type OAuthConnection struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Provider       string    `gorm:"not null;size:50" json:"provider"` // google or github
	ProviderUserID string    `gorm:"not null;size:255;index" json:"provider_user_id"`
	AccessToken    string    `gorm:"size:1024" json:"-"`
	RefreshToken   string    `gorm:"size:1024" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OAuthConnection) TableName() string {
	return "oauth_connections"
}
