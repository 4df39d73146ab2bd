// Package storage is the gorm-backed persistence for orders, designs, products and
// notifications.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/artwork"
	"github.com/kendall-kelly/printshop-api/models"
)

type txKey struct{}

// OrderStore reads and writes orders, their items and designs.
type OrderStore struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewOrderStore creates an OrderStore over db.
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db, clock: time.Now}
}

// conn returns the transaction carried by ctx, or the base connection.
func (s *OrderStore) conn(ctx context.Context) *gorm.DB {
	return connFrom(ctx, s.db)
}

func connFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// RunInTx runs fn in a transaction. Nested calls join the outer transaction.
func (s *OrderStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// CreateOrder inserts the order with its items. A taken order number is a Conflict.
func (s *OrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := s.conn(ctx).Create(order).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("ORDER_NUMBER_TAKEN", "Order number already exists")
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrder returns the order without associations.
func (s *OrderStore) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.conn(ctx).First(&order, orderID).Error; err != nil {
		return nil, notFound(err, "ORDER_NOT_FOUND", "Order not found")
	}
	return &order, nil
}

// GetOrderDetails returns the order with customer, items and linked designs.
func (s *OrderStore) GetOrderDetails(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.conn(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Design").
		First(&order, orderID).Error
	if err != nil {
		return nil, notFound(err, "ORDER_NOT_FOUND", "Order not found")
	}
	return &order, nil
}

// LockOrder reads the order with a row lock held until the transaction ends. Drivers
// without row locks (sqlite) serialize writers on the database instead.
func (s *OrderStore) LockOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, orderID).Error
	if err != nil {
		return nil, notFound(err, "ORDER_NOT_FOUND", "Order not found")
	}
	return &order, nil
}

// ListOrders returns one page of orders, newest first, and the total count. A zero
// customerID or empty status does not filter.
func (s *OrderStore) ListOrders(ctx context.Context, customerID uint, status models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	query := s.conn(ctx).Model(&models.Order{})
	if customerID != 0 {
		query = query.Where("customer_id = ?", customerID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := query.
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Design").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrderFields writes fields on the order and bumps updated_at, never moving it
// backwards from the value in order.
func (s *OrderStore) UpdateOrderFields(ctx context.Context, order *models.Order, fields map[string]interface{}) error {
	fields["updated_at"] = s.nextUpdatedAt(order.UpdatedAt)
	result := s.conn(ctx).Model(&models.Order{}).Where("id = ?", order.ID).UpdateColumns(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update order %d: %w", order.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflict("ORDER_CHANGED", "Order was removed while the request was in flight")
	}
	return nil
}

// GetItemsForOrder returns the order's items with their designs, in id order.
func (s *OrderStore) GetItemsForOrder(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.conn(ctx).
		Preload("Design").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load items for order %d: %w", orderID, err)
	}
	return items, nil
}

// GetItem returns one item of the order with its design.
func (s *OrderStore) GetItem(ctx context.Context, orderID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := s.conn(ctx).
		Preload("Design").
		Where("id = ? AND order_id = ?", itemID, orderID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "ORDER_ITEM_NOT_FOUND", "Order item not found")
	}
	return &item, nil
}

// GetDesign returns a design by id.
func (s *OrderStore) GetDesign(ctx context.Context, designID uint) (*models.Design, error) {
	var design models.Design
	if err := s.conn(ctx).First(&design, designID).Error; err != nil {
		return nil, notFound(err, "DESIGN_NOT_FOUND", "Design not found")
	}
	return &design, nil
}

// ListDesigns returns the designs owned by ownerID, newest first.
func (s *OrderStore) ListDesigns(ctx context.Context, ownerID uint) ([]models.Design, error) {
	var designs []models.Design
	err := s.conn(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&designs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	return designs, nil
}

// SaveDesign inserts a new design or updates every column of an existing one.
func (s *OrderStore) SaveDesign(ctx context.Context, design *models.Design) error {
	if err := s.conn(ctx).Save(design).Error; err != nil {
		return fmt.Errorf("failed to save design: %w", err)
	}
	return nil
}

// DeleteDesign removes a design row.
func (s *OrderStore) DeleteDesign(ctx context.Context, designID uint) error {
	result := s.conn(ctx).Delete(&models.Design{}, designID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete design %d: %w", designID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("DESIGN_NOT_FOUND", "Design not found")
	}
	return nil
}

// IsDesignLinked reports whether any item other than exceptItemID links the design.
func (s *OrderStore) IsDesignLinked(ctx context.Context, designID, exceptItemID uint) (bool, error) {
	var count int64
	err := s.conn(ctx).
		Model(&models.OrderItem{}).
		Where("design_id = ? AND id <> ?", designID, exceptItemID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check design links: %w", err)
	}
	return count > 0, nil
}

// UpdateItemDesignLink points the item at designID, or clears the link when nil.
func (s *OrderStore) UpdateItemDesignLink(ctx context.Context, itemID uint, designID *uint) error {
	result := s.conn(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Update("design_id", designID)
	if result.Error != nil {
		return fmt.Errorf("failed to update design link of item %d: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Conflict("ORDER_ITEM_CHANGED", "Order item was removed while the request was in flight")
	}
	return nil
}

// RecomputeAndPersistArtworkStatus derives the order's artwork status from its items and
// stores it, bumping updated_at.
func (s *OrderStore) RecomputeAndPersistArtworkStatus(ctx context.Context, orderID uint) (models.ArtworkStatus, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	items, err := s.GetItemsForOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	status := artwork.Aggregate(items)
	err = s.UpdateOrderFields(ctx, order, map[string]interface{}{"artwork_status": status})
	if err != nil {
		return "", err
	}
	return status, nil
}

// RecomputeAll refreshes the cached artwork status of every order and returns how many
// changed.
func (s *OrderStore) RecomputeAll(ctx context.Context) (int, error) {
	var ids []uint
	if err := s.conn(ctx).Model(&models.Order{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to list orders: %w", err)
	}

	changed := 0
	for _, id := range ids {
		err := s.RunInTx(ctx, func(ctx context.Context) error {
			order, err := s.LockOrder(ctx, id)
			if err != nil {
				return err
			}
			status, err := s.RecomputeAndPersistArtworkStatus(ctx, id)
			if err != nil {
				return err
			}
			if status != order.ArtworkStatus {
				changed++
			}
			return nil
		})
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// AppendMessage adds a message to the order conversation.
func (s *OrderStore) AppendMessage(ctx context.Context, message *models.Message) error {
	if err := s.conn(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListMessages returns the order conversation, oldest first, with senders.
func (s *OrderStore) ListMessages(ctx context.Context, orderID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.conn(ctx).
		Preload("Sender").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *OrderStore) nextUpdatedAt(previous time.Time) time.Time {
	now := s.clock()
	if now.Before(previous) {
		return previous
	}
	return now
}

func notFound(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(code, message)
	}
	return fmt.Errorf("%s: %w", strings.ToLower(message), err)
}

// isUniqueViolation recognises unique constraint failures from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
