package handler

import (
	"sync"
	"time"

	"github.com/email-classifier/internal/domain"
	"go.uber.org/zap"
)

// defaultNotificationCapacity is how many notifications the console keeps.
const defaultNotificationCapacity = 50

// NotificationEntry is a notification with the time it was raised.
type NotificationEntry struct {
	domain.Notification
	At time.Time `json:"at"`
}

// NotificationLog is a bounded in-memory notifier. The console exposes its
// entries in the status response; every notification is also logged.
type NotificationLog struct {
	mu       sync.Mutex
	entries  []NotificationEntry
	capacity int
	logger   *zap.Logger
}

// NewNotificationLog creates a log keeping at most capacity entries.
func NewNotificationLog(capacity int, logger *zap.Logger) *NotificationLog {
	if capacity <= 0 {
		capacity = defaultNotificationCapacity
	}
	return &NotificationLog{
		capacity: capacity,
		logger:   logger.Named("notifications"),
	}
}

// Notify records n, evicting the oldest entry when full.
func (l *NotificationLog) Notify(n domain.Notification) {
	l.logger.Debug("notification",
		zap.String("level", string(n.Level)),
		zap.String("message", n.Message),
	)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, NotificationEntry{Notification: n, At: time.Now()})
}

// Recent returns a copy of the entries, oldest first.
func (l *NotificationLog) Recent() []NotificationEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]NotificationEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
