package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kendall-kelly/printshop-api/apperrors"
	"github.com/kendall-kelly/printshop-api/models"
)

// NotificationStore keeps the in-app inbox.
type NotificationStore struct {
	db *gorm.DB
}

// NewNotificationStore creates a NotificationStore over db.
func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create stores one inbox entry.
func (s *NotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	if err := connFrom(ctx, s.db).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// inbox scopes a query to what user may see: the admin inbox for admins, their own
// entries for customers.
func inbox(db *gorm.DB, user *models.User) *gorm.DB {
	if user.IsAdmin() {
		return db.Where("audience = ?", models.AudienceAdmin)
	}
	return db.Where("audience = ? AND recipient_user_id = ?", models.AudienceCustomer, user.ID)
}

// ListForUser returns the user's inbox, newest first.
func (s *NotificationStore) ListForUser(ctx context.Context, user *models.User, unreadOnly bool) ([]models.Notification, error) {
	query := inbox(connFrom(ctx, s.db).Model(&models.Notification{}), user)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks an entry of the user's inbox as read.
func (s *NotificationStore) MarkRead(ctx context.Context, user *models.User, notificationID uint, at time.Time) (*models.Notification, error) {
	var notification models.Notification
	err := inbox(connFrom(ctx, s.db), user).First(&notification, notificationID).Error
	if err != nil {
		return nil, notFound(err, "NOTIFICATION_NOT_FOUND", "Notification not found")
	}
	if notification.ReadAt != nil {
		return &notification, nil
	}

	result := connFrom(ctx, s.db).Model(&notification).Update("read_at", at)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("NOTIFICATION_NOT_FOUND", "Notification not found")
	}
	notification.ReadAt = &at
	return &notification, nil
}
