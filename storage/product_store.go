package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kendall-kelly/printshop-api/models"
)

// ProductStore reads the product catalog.
type ProductStore struct {
	db *gorm.DB
}

// NewProductStore creates a ProductStore over db.
func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func withPricing(db *gorm.DB) *gorm.DB {
	return db.
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB { return db.Order("min_quantity ASC") }).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("option_type ASC, value ASC") })
}

// GetProduct returns a product with its price tiers and options.
func (s *ProductStore) GetProduct(ctx context.Context, productID uint) (*models.Product, error) {
	var product models.Product
	if err := withPricing(connFrom(ctx, s.db)).First(&product, productID).Error; err != nil {
		return nil, notFound(err, "PRODUCT_NOT_FOUND", "Product not found")
	}
	return &product, nil
}

// ListProducts returns the catalog by name. Inactive products are included only when
// asked for.
func (s *ProductStore) ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	query := withPricing(connFrom(ctx, s.db))
	if !includeInactive {
		query = query.Where("active = ?", true)
	}

	var products []models.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CreateProduct inserts a product with its tiers and options.
func (s *ProductStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := connFrom(ctx, s.db).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}
