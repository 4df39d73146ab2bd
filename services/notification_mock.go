package services

import (
	"context"
	"sync"

	"github.com/kendall-kelly/printshop-api/notify"
)

// RecordingNotifier remembers every notification it is given, for testing
type RecordingNotifier struct {
	sent []notify.Notification
	err  error
	mu   sync.Mutex
}

// NewRecordingNotifier creates an empty recording notifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Fail makes Notify record and then return err; nil restores success
func (r *RecordingNotifier) Fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Notify records the notification
func (r *RecordingNotifier) Notify(ctx context.Context, notification notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notification)
	return r.err
}

// Sent returns the recorded notifications in order
func (r *RecordingNotifier) Sent() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.sent...)
}

// Kinds returns the kinds of the recorded notifications in order
func (r *RecordingNotifier) Kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]notify.Kind, len(r.sent))
	for i, n := range r.sent {
		kinds[i] = n.Kind
	}
	return kinds
}

// Reset forgets recorded notifications and injected failures
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.err = nil
	r.mu.Unlock()
}
