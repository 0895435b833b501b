package model

import "time"

type DeliveryLog struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Recipient     string    `gorm:"not null;index" json:"recipient"`
	Status        string    `gorm:"not null" json:"status"` // success, retrying, failed
	DeliveryType  string    `gorm:"not null" json:"delivery_type"`
	AttemptNumber int       `gorm:"not null;default:1" json:"attempt_number"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	AttemptedAt   time.Time `gorm:"not null" json:"attempted_at"`
}

func (DeliveryLog) TableName() string {
	return "delivery_logs"
}
