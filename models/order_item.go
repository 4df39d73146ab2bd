package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderItem is one line of an order; its unit price is fixed when the order is placed
type OrderItem struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	OrderID         uint              `gorm:"not null;index" json:"order_id"`
	ProductID       uint              `gorm:"not null;index" json:"product_id"`
	ProductName     string            `gorm:"not null" json:"product_name"`
	Quantity        int               `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"line_total"`
	SelectedOptions datatypes.JSONMap `json:"selected_options"` // option type -> chosen value
	DesignID        *uint             `gorm:"index" json:"design_id"`
	Design          *Design           `gorm:"foreignKey:DesignID" json:"design,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
