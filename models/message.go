package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is one entry of an order conversation. Revision requests are posted here too,
// tagged with the item they concern.
type Message struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	Order       Order          `gorm:"foreignKey:OrderID" json:"-"`
	OrderItemID *uint          `gorm:"index" json:"order_item_id,omitempty"`
	SenderID    uint           `gorm:"not null;index" json:"sender_id"`
	Sender      User           `gorm:"foreignKey:SenderID" json:"sender"`
	Text        string         `gorm:"type:text;not null" json:"text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
