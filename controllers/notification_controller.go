package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/storage"
)

// ListNotifications handles GET /api/v1/notifications - the caller's inbox, ?unread=true for unread only
func ListNotifications(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := storage.NewNotificationStore(config.GetDB()).ListForUser(c.Request.Context(), user, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	notificationID, err := paramID(c, "id", "INVALID_NOTIFICATION_ID")
	if err != nil {
		respondError(c, err)
		return
	}

	notification, err := storage.NewNotificationStore(config.GetDB()).MarkRead(c.Request.Context(), user, notificationID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}
