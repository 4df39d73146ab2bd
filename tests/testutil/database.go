package testutil

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
)

// NewTestDB opens a migrated in-memory SQLite database private to the test
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// SQLite allows one writer; a single connection serializes transactions like row locks would
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateUser inserts a user with the given role
func CreateUser(t *testing.T, db *gorm.DB, auth0ID, role string) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Test " + role,
		Email:   auth0ID + "@example.com",
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateProduct inserts an active product with a bulk tier and a size option
func CreateProduct(t *testing.T, db *gorm.DB, name string, basePrice string) models.Product {
	t.Helper()

	product := models.Product{
		Name:      name,
		Slug:      uuid.NewString(),
		BasePrice: decimal.RequireFromString(basePrice),
		Active:    true,
		PriceTiers: []models.PriceTier{
			{MinQuantity: 50, UnitPrice: decimal.RequireFromString(basePrice).Mul(decimal.RequireFromString("0.8"))},
		},
		Options: []models.ProductOption{
			{OptionType: "size", Value: "M", PriceModifier: decimal.Zero},
			{OptionType: "size", Value: "XL", PriceModifier: decimal.RequireFromString("2.00")},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product
}

// CreateOrder inserts a pending order for customer with one item per product
func CreateOrder(t *testing.T, db *gorm.DB, customer models.User, products ...models.Product) models.Order {
	t.Helper()

	order := models.Order{
		OrderNumber:    "ORD-" + uuid.NewString()[:8],
		CustomerID:     customer.ID,
		Status:         models.OrderStatusPending,
		ArtworkStatus:  models.ArtworkAwaiting,
		DeliveryMethod: models.DeliveryPickup,
	}
	subtotal := decimal.Zero
	for _, product := range products {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    10,
			UnitPrice:   product.BasePrice,
			LineTotal:   product.BasePrice.Mul(decimal.NewFromInt(10)),
		})
		subtotal = subtotal.Add(product.BasePrice.Mul(decimal.NewFromInt(10)))
	}
	order.Subtotal = subtotal
	order.Total = subtotal

	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return order
}

// SetOrderStatus forces an order into status, bypassing the lifecycle rules
func SetOrderStatus(t *testing.T, db *gorm.DB, orderID uint, status models.OrderStatus) {
	t.Helper()

	if err := db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error; err != nil {
		t.Fatalf("Failed to set order status: %v", err)
	}
}

// NewFileHeader builds a multipart file header as gin would hand it to a handler
func NewFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatalf("Failed to create form part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close form: %v", err)
	}

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	if err != nil {
		t.Fatalf("Failed to read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["file"][0]
}

// PNG is a tiny stand-in for image content in tests
var PNG = []byte("\x89PNG\r\n\x1a\nartwork")
