package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/orders"
)

// UpdateOrderStatusRequest represents the request body for moving an order along
type UpdateOrderStatusRequest struct {
	Status          models.OrderStatus `json:"status" binding:"required"`
	TrackingCarrier string             `json:"tracking_carrier"`
	TrackingNumber  string             `json:"tracking_number"`
}

// ApplyDiscountRequest represents the request body for discounting an order
type ApplyDiscountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateOrder handles POST /api/v1/orders - creates a new order (customers only)
func CreateOrder(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req orders.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := newOrderService().CreateOrder(c.Request.Context(), actorOf(user), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - customers see their own orders, admins see all
func ListOrders(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	// Invalid paging values fall back to the defaults
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(orders.DefaultPageSize)))
	status := models.OrderStatus(c.Query("status"))

	result, err := newOrderService().List(c.Request.Context(), actorOf(user), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetOrder handles GET /api/v1/orders/:id - the order with items and designs
func GetOrder(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, err := paramID(c, "id", "INVALID_ORDER_ID")
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := newOrderService().Get(c.Request.Context(), orderID, actorOf(user))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func UpdateOrderStatus(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, err := paramID(c, "id", "INVALID_ORDER_ID")
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	tracking := orders.Tracking{Carrier: req.TrackingCarrier, Number: req.TrackingNumber}
	order, err := newOrderService().UpdateStatus(c.Request.Context(), orderID, actorOf(user), req.Status, tracking)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
		"data":    order,
	})
}

// ApplyOrderDiscount handles PATCH /api/v1/orders/:id/discount (admins only)
func ApplyOrderDiscount(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orderID, err := paramID(c, "id", "INVALID_ORDER_ID")
	if err != nil {
		respondError(c, err)
		return
	}

	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := newOrderService().ApplyDiscount(c.Request.Context(), orderID, actorOf(user), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Discount applied",
		"data":    order,
	})
}
