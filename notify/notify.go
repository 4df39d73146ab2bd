// Package notify is the contract between state transitions and whoever is told about them.
package notify

import (
	"context"
	"log"
)

// Kind names a transition worth telling someone about.
type Kind string

const (
	KindArtworkUploaded         Kind = "artwork.uploaded"
	KindArtworkApproved         Kind = "artwork.approved"
	KindArtworkChangesRequested Kind = "artwork.changes_requested"
	KindArtworkProofReady       Kind = "artwork.proof_ready"
	KindOrderStatusChanged      Kind = "order.status_changed"
)

// ForAdmin reports whether the kind goes to the admin inbox rather than the customer.
func (k Kind) ForAdmin() bool {
	switch k {
	case KindArtworkUploaded, KindArtworkApproved:
		return true
	default:
		return false
	}
}

// Notification is one fire-and-forget message. CustomerID identifies the order owner.
type Notification struct {
	Kind       Kind
	OrderID    uint
	CustomerID uint
	Payload    map[string]interface{}
}

// Notifier delivers notifications. Delivery is at-least-once and never transactional
// with the state change that produced it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Dispatch sends every notification, logging failures instead of returning them.
func Dispatch(ctx context.Context, notifier Notifier, notifications []Notification) {
	if notifier == nil {
		return
	}
	for _, n := range notifications {
		if err := notifier.Notify(ctx, n); err != nil {
			log.Printf("notify: failed to deliver %s for order %d: %v", n.Kind, n.OrderID, err)
		}
	}
}
