// Package orders implements placing orders and moving them through fulfilment.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/artwork"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/notify"
	"github.com/kendall-kelly/printshop-api/pricing"
)

const (
	orderNumberAttempts = 3
	DefaultPageSize     = 20
	MaxPageSize         = 100
)

// Store is the order persistence the service needs.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID uint) (*models.Order, error)
	GetOrderDetails(ctx context.Context, orderID uint) (*models.Order, error)
	LockOrder(ctx context.Context, orderID uint) (*models.Order, error)
	ListOrders(ctx context.Context, customerID uint, status models.OrderStatus, page, limit int) ([]models.Order, int64, error)
	UpdateOrderFields(ctx context.Context, order *models.Order, fields map[string]interface{}) error
	GetItemsForOrder(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	RecomputeAndPersistArtworkStatus(ctx context.Context, orderID uint) (models.ArtworkStatus, error)
}

// Catalog looks up products.
type Catalog interface {
	GetProduct(ctx context.Context, productID uint) (*models.Product, error)
}

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ProductID uint              `json:"product_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required,gt=0"`
	Options   map[string]string `json:"options"`
}

// CreateInput is a new order request.
type CreateInput struct {
	Items           []ItemInput           `json:"items" binding:"required,min=1,dive"`
	DeliveryMethod  models.DeliveryMethod `json:"delivery_method"`
	ShippingAddress models.Address        `json:"shipping_address"`
	Notes           string                `json:"notes"`
}

// Tracking identifies a shipment.
type Tracking struct {
	Carrier string `json:"tracking_carrier"`
	Number  string `json:"tracking_number"`
}

// Page is one page of a listing.
type Page struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// Service places and advances orders.
type Service struct {
	store     Store
	catalog   Catalog
	notifier  notify.Notifier
	rates     pricing.Rates
	clock     func() time.Time
	newNumber func() string
}

// NewService creates an order service.
func NewService(store Store, catalog Catalog, notifier notify.Notifier, rates pricing.Rates) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		notifier:  notifier,
		rates:     rates,
		clock:     time.Now,
		newNumber: NewOrderNumber,
	}
}

// NewOrderNumber returns a human-readable order number such as ORD-3F9A1C2B.
func NewOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:8])
}

// CreateOrder prices the requested items and stores a pending order for the customer.
func (s *Service) CreateOrder(ctx context.Context, actor artwork.Actor, in CreateInput) (*models.Order, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthenticated("Authentication required")
	}
	if actor.IsAdmin {
		return nil, apperrors.Forbidden("Only customers can create orders")
	}
	if len(in.Items) == 0 {
		return nil, apperrors.InvalidInput("NO_ITEMS", "An order needs at least one item")
	}

	method := in.DeliveryMethod
	if method == "" {
		method = models.DeliveryShipping
	}
	address := in.ShippingAddress
	switch method {
	case models.DeliveryShipping:
		if address.Line1 == "" || address.City == "" || address.PostalCode == "" || address.Country == "" {
			return nil, apperrors.InvalidInput("MISSING_ADDRESS", "Shipping orders need a street, city, postal code and country")
		}
	case models.DeliveryPickup:
		address = models.Address{}
	default:
		return nil, apperrors.InvalidInput("INVALID_DELIVERY_METHOD", fmt.Sprintf("Unknown delivery method %q", method))
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, requested := range in.Items {
		item, err := s.priceItem(ctx, requested)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	totals, err := pricing.Compute(items, method, decimal.Zero, s.rates)
	if err != nil {
		return nil, apperrors.Internal("Failed to compute order totals", err)
	}

	order := &models.Order{
		CustomerID:      actor.UserID,
		Status:          models.OrderStatusPending,
		ArtworkStatus:   artwork.Aggregate(items),
		DeliveryMethod:  method,
		ShippingAddress: address,
		Notes:           strings.TrimSpace(in.Notes),
		Items:           items,
	}
	totals.Apply(order)

	for attempt := 1; ; attempt++ {
		order.OrderNumber = s.newNumber()
		err = s.store.CreateOrder(ctx, order)
		if err == nil {
			break
		}
		if appErr, ok := apperrors.As(err); ok && appErr.Code == "ORDER_NUMBER_TAKEN" && attempt < orderNumberAttempts {
			continue
		}
		return nil, err
	}

	return s.store.GetOrderDetails(ctx, order.ID)
}

func (s *Service) priceItem(ctx context.Context, requested ItemInput) (models.OrderItem, error) {
	product, err := s.catalog.GetProduct(ctx, requested.ProductID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return models.OrderItem{}, apperrors.InvalidInput("UNKNOWN_PRODUCT",
				fmt.Sprintf("Product %d does not exist", requested.ProductID))
		}
		return models.OrderItem{}, err
	}
	if !product.Active {
		return models.OrderItem{}, apperrors.InvalidInput("PRODUCT_INACTIVE",
			fmt.Sprintf("%s is no longer available", product.Name))
	}

	unitPrice, err := pricing.UnitPrice(*product, requested.Quantity, requested.Options)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrInvalidQuantity):
			return models.OrderItem{}, apperrors.InvalidInput("INVALID_QUANTITY", err.Error())
		case errors.Is(err, pricing.ErrUnknownOption):
			return models.OrderItem{}, apperrors.InvalidInput("INVALID_OPTION", err.Error())
		default:
			return models.OrderItem{}, err
		}
	}

	options := datatypes.JSONMap{}
	for optionType, value := range requested.Options {
		options[optionType] = value
	}

	return models.OrderItem{
		ProductID:       product.ID,
		ProductName:     product.Name,
		Quantity:        requested.Quantity,
		UnitPrice:       unitPrice,
		LineTotal:       pricing.LineTotal(unitPrice, requested.Quantity),
		SelectedOptions: options,
	}, nil
}

// transition describes an allowed status change. Only admins may make it unless
// ownerMay is set.
type transition struct {
	ownerMay bool
}

var transitions = map[models.OrderStatus]map[models.OrderStatus]transition{
	models.OrderStatusPending: {
		models.OrderStatusPaid:      {},
		models.OrderStatusCancelled: {ownerMay: true},
	},
	models.OrderStatusPaid: {
		models.OrderStatusProcessing: {},
		models.OrderStatusCancelled:  {},
	},
	models.OrderStatusProcessing: {
		models.OrderStatusShipped:   {},
		models.OrderStatusDelivered: {},
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered: {},
	},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// UpdateStatus moves the order to status. Production needs every item's artwork approved;
// shipping needs tracking details.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, actor artwork.Actor, to models.OrderStatus, tracking Tracking) (*models.Order, error) {
	order, err := s.authorize(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}

	var from models.OrderStatus
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.store.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		from = order.Status

		rule, ok := transitions[from][to]
		if !ok {
			return apperrors.InvalidState("INVALID_STATUS_TRANSITION",
				fmt.Sprintf("Cannot change order status from %s to %s", from, to))
		}
		if !actor.IsAdmin && !(rule.ownerMay && order.IsOwnedBy(actor.UserID)) {
			return apperrors.Forbidden(fmt.Sprintf("Only admins can move an order to %s", to))
		}

		fields := map[string]interface{}{"status": to}
		switch to {
		case models.OrderStatusProcessing:
			items, err := s.store.GetItemsForOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			if status := artwork.Aggregate(items); status != models.ArtworkApproved {
				return apperrors.InvalidState("ARTWORK_NOT_APPROVED",
					fmt.Sprintf("All artwork must be approved before production (artwork is %s)", status))
			}
		case models.OrderStatusShipped:
			if order.DeliveryMethod != models.DeliveryShipping {
				return apperrors.InvalidState("NOT_A_SHIPPING_ORDER", "Pickup orders are delivered, not shipped")
			}
			carrier, number := strings.TrimSpace(tracking.Carrier), strings.TrimSpace(tracking.Number)
			if carrier == "" || number == "" {
				return apperrors.InvalidInput("MISSING_TRACKING", "Tracking carrier and number are required to ship")
			}
			fields["tracking_carrier"] = carrier
			fields["tracking_number"] = number
			fields["shipped_at"] = s.clock()
		case models.OrderStatusDelivered:
			if from == models.OrderStatusProcessing && order.DeliveryMethod != models.DeliveryPickup {
				return apperrors.InvalidState("SHIPPING_ORDER_MUST_SHIP", "Shipping orders must be shipped before delivery")
			}
		}

		if err := s.store.UpdateOrderFields(ctx, order, fields); err != nil {
			return err
		}
		_, err = s.store.RecomputeAndPersistArtworkStatus(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	notify.Dispatch(ctx, s.notifier, []notify.Notification{{
		Kind:       notify.KindOrderStatusChanged,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Payload: map[string]interface{}{
			"order_number": order.OrderNumber,
			"from":         string(from),
			"to":           string(to),
		},
	}})

	return s.Get(ctx, orderID, actor)
}

// ApplyDiscount sets an absolute discount on an order that has not gone to production.
func (s *Service) ApplyDiscount(ctx context.Context, orderID uint, actor artwork.Actor, amount decimal.Decimal) (*models.Order, error) {
	if _, err := s.authorize(ctx, orderID, actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, apperrors.Forbidden("Only admins can apply discounts")
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.store.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPaid {
			return apperrors.InvalidState("ORDER_LOCKED",
				fmt.Sprintf("Discounts cannot be applied to a %s order", order.Status))
		}

		items, err := s.store.GetItemsForOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		totals, err := pricing.Compute(items, order.DeliveryMethod, amount, s.rates)
		if err != nil {
			if errors.Is(err, pricing.ErrInvalidDiscount) {
				return apperrors.InvalidInput("INVALID_DISCOUNT", err.Error())
			}
			return err
		}

		return s.store.UpdateOrderFields(ctx, order, map[string]interface{}{
			"subtotal":      totals.Subtotal,
			"shipping_cost": totals.Shipping,
			"tax":           totals.Tax,
			"discount":      totals.Discount,
			"total":         totals.Total,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, orderID, actor)
}

// Get returns the order with items, designs and a freshly computed artwork status.
func (s *Service) Get(ctx context.Context, orderID uint, actor artwork.Actor) (*models.Order, error) {
	if _, err := s.authorize(ctx, orderID, actor); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrderDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.ArtworkStatus = artwork.Aggregate(order.Items)
	return order, nil
}

// List returns a page of orders: all of them for admins, their own for customers.
func (s *Service) List(ctx context.Context, actor artwork.Actor, status models.OrderStatus, page, limit int) (*Page, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthenticated("Authentication required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	customerID := actor.UserID
	if actor.IsAdmin {
		customerID = 0
	}

	orders, total, err := s.store.ListOrders(ctx, customerID, status, page, limit)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].ArtworkStatus = artwork.Aggregate(orders[i].Items)
	}

	return &Page{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

// authorize loads the order for its owner or an admin.
func (s *Service) authorize(ctx context.Context, orderID uint, actor artwork.Actor) (*models.Order, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthenticated("Authentication required")
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !order.IsOwnedBy(actor.UserID) {
		return nil, apperrors.Forbidden("You do not have permission to access this order")
	}
	return order, nil
}
