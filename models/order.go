package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// AcceptsArtworkChanges reports whether artwork on the order may still be uploaded,
// linked, unlinked or approved.
func (s OrderStatus) AcceptsArtworkChanges() bool {
	return s == OrderStatusPending || s == OrderStatusPaid
}

// DeliveryMethod is how the finished order reaches the customer
type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "shipping"
	DeliveryPickup   DeliveryMethod = "pickup"
)

// ArtworkStatus is the order-level summary of its items' artwork progress
type ArtworkStatus string

const (
	ArtworkAwaiting          ArtworkStatus = "awaiting_artwork"
	ArtworkUploaded          ArtworkStatus = "artwork_uploaded"
	ArtworkInReview          ArtworkStatus = "in_review"
	ArtworkPendingApproval   ArtworkStatus = "pending_approval"
	ArtworkRevisionRequested ArtworkStatus = "revision_requested"
	ArtworkApproved          ArtworkStatus = "approved"
)

// Address is a structured shipping address, empty for pickup orders
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsZero reports whether no address was given
func (a Address) IsZero() bool {
	return a == Address{}
}

// Order represents a customer's print order
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"` // foreign key to users table
	Customer        User            `gorm:"foreignKey:CustomerID" json:"customer"`
	Status          OrderStatus     `gorm:"not null;default:'pending'" json:"status"`
	ArtworkStatus   ArtworkStatus   `gorm:"not null;default:'awaiting_artwork'" json:"artwork_status"` // cached projection, see artwork.Aggregate
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	ShippingCost    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_cost"`
	Tax             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	DeliveryMethod  DeliveryMethod  `gorm:"not null;default:'shipping'" json:"delivery_method"`
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	TrackingCarrier *string         `json:"tracking_carrier,omitempty"` // set when shipped
	TrackingNumber  *string         `json:"tracking_number,omitempty"`  // set when shipped
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsOwnedBy reports whether userID placed the order
func (o Order) IsOwnedBy(userID uint) bool {
	return userID != 0 && o.CustomerID == userID
}
