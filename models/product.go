package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a printable catalog item
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	Active      bool            `gorm:"not null" json:"active"`
	PriceTiers  []PriceTier     `gorm:"foreignKey:ProductID" json:"price_tiers,omitempty"`
	Options     []ProductOption `gorm:"foreignKey:ProductID" json:"options,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// PriceTier replaces the base unit price once an item reaches MinQuantity
type PriceTier struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	MinQuantity int             `gorm:"not null;check:min_quantity > 0" json:"min_quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

// TableName specifies the table name for the PriceTier model
func (PriceTier) TableName() string {
	return "price_tiers"
}

// ProductOption is one selectable value of an option type (e.g. size=A4), with a per-unit modifier
type ProductOption struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	OptionType    string          `gorm:"not null" json:"option_type"`
	Value         string          `gorm:"not null" json:"value"`
	PriceModifier decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price_modifier"`
}

// TableName specifies the table name for the ProductOption model
func (ProductOption) TableName() string {
	return "product_options"
}
