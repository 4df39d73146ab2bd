package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/storage"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// orderForConversation loads the order if the user may take part in its conversation:
// the customer who placed it, or any admin
func orderForConversation(c *gin.Context, store *storage.OrderStore, user *models.User) (*models.Order, error) {
	orderID, err := paramID(c, "id", "INVALID_ORDER_ID")
	if err != nil {
		return nil, err
	}
	order, err := store.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() && !order.IsOwnedBy(user.ID) {
		return nil, apperrors.Forbidden("You do not have permission to message on this order")
	}
	return order, nil
}

// SendMessage handles POST /api/v1/orders/:id/messages - sends a message on an order
func SendMessage(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	store := storage.NewOrderStore(config.GetDB())
	order, err := orderForConversation(c, store, user)
	if err != nil {
		respondError(c, err)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(c, apperrors.InvalidInput("EMPTY_MESSAGE", "Message text cannot be blank"))
		return
	}

	message := models.Message{
		OrderID:  order.ID,
		SenderID: user.ID,
		Text:     text,
	}
	if err := store.AppendMessage(c.Request.Context(), &message); err != nil {
		respondError(c, err)
		return
	}
	message.Sender = *user

	c.PureJSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/orders/:id/messages - lists messages for an order
func ListMessages(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	store := storage.NewOrderStore(config.GetDB())
	order, err := orderForConversation(c, store, user)
	if err != nil {
		respondError(c, err)
		return
	}

	messages, err := store.ListMessages(c.Request.Context(), order.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}
