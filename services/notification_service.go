package services

import (
	"context"
	"errors"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kendall-kelly/printshop-api/models"
	"github.com/kendall-kelly/printshop-api/notify"
	"github.com/kendall-kelly/printshop-api/storage"
)

// InboxNotifier records notifications as in-app inbox entries
type InboxNotifier struct {
	store *storage.NotificationStore
}

// NewInboxNotifier creates an inbox notifier over db
func NewInboxNotifier(db *gorm.DB) *InboxNotifier {
	return &InboxNotifier{store: storage.NewNotificationStore(db)}
}

// Notify stores the notification for the admin inbox or the order's customer
func (n *InboxNotifier) Notify(ctx context.Context, notification notify.Notification) error {
	entry := &models.Notification{
		Kind:     string(notification.Kind),
		OrderID:  notification.OrderID,
		Audience: models.AudienceCustomer,
		Payload:  datatypes.JSONMap(notification.Payload),
	}
	if notification.Kind.ForAdmin() {
		entry.Audience = models.AudienceAdmin
	} else {
		customerID := notification.CustomerID
		entry.RecipientUserID = &customerID
	}
	if entry.Payload == nil {
		entry.Payload = datatypes.JSONMap{}
	}

	return n.store.Create(ctx, entry)
}

// LogNotifier writes notifications to the application log in place of an email channel
type LogNotifier struct{}

// Notify logs the notification
func (LogNotifier) Notify(ctx context.Context, notification notify.Notification) error {
	audience := "customer"
	if notification.Kind.ForAdmin() {
		audience = "admin"
	}
	log.Printf("notification %s for order %d to %s: %v", notification.Kind, notification.OrderID, audience, notification.Payload)
	return nil
}

// MultiNotifier fans a notification out to every notifier, collecting their errors
type MultiNotifier []notify.Notifier

// Notify delivers to all notifiers even when some fail
func (m MultiNotifier) Notify(ctx context.Context, notification notify.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var notifierOverride notify.Notifier

// NotifierFor returns the notifier used by request handlers: the inbox plus the log,
// unless a test installed its own
func NotifierFor(db *gorm.DB) notify.Notifier {
	if notifierOverride != nil {
		return notifierOverride
	}
	return MultiNotifier{NewInboxNotifier(db), LogNotifier{}}
}

// SetNotifier overrides the notifier (primarily for testing); nil restores the default
func SetNotifier(notifier notify.Notifier) {
	notifierOverride = notifier
}
