package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AudienceAdmin    = "admin"
	AudienceCustomer = "customer"
)

// Notification is an in-app inbox entry produced by an order or artwork transition
type Notification struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	Kind            string            `gorm:"not null;index" json:"kind"`
	OrderID         uint              `gorm:"not null;index" json:"order_id"`
	Audience        string            `gorm:"not null;index" json:"audience"` // "admin" inbox or a single customer
	RecipientUserID *uint             `gorm:"index" json:"recipient_user_id,omitempty"`
	Payload         datatypes.JSONMap `json:"payload"`
	ReadAt          *time.Time        `json:"read_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
