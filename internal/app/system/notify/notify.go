// Package notify announces newly posted notices and requests. Notifications
// are written to the log and kept in a bounded in-memory feed that clients
// poll.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCapacity is how many notifications a Feed keeps.
const DefaultCapacity = 50

// Notification is one announcement.
type Notification struct {
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id"`
	At         time.Time `json:"at"`
}

// NoticeNotification is what a new notice announces.
func NoticeNotification(title, content string) Notification {
	return Notification{Title: "🆕 " + title, Body: content, Collection: "notices"}
}

// RequestNotification is what a new request announces. An empty description
// reads "No description".
func RequestNotification(title, description string) Notification {
	if description == "" {
		description = "No description"
	}
	return Notification{Title: "📥 New Request: " + title, Body: description, Collection: "requests"}
}

// Feed is safe for concurrent use.
type Feed struct {
	mu    sync.Mutex
	items []Notification // oldest first
	size  int
	log   *zap.Logger
	now   func() time.Time
}

// NewFeed returns a feed holding at most capacity items.
func NewFeed(capacity int, logger *zap.Logger) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{size: capacity, log: logger, now: time.Now}
}

// Publish records n, evicting the oldest item when full.
func (f *Feed) Publish(n Notification) {
	if n.At.IsZero() {
		n.At = f.now().UTC()
	}
	f.log.Info("notification",
		zap.String("title", n.Title),
		zap.String("collection", n.Collection),
		zap.String("record_id", n.RecordID))

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.size {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Recent returns up to limit notifications, newest first. limit <= 0 means all.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.items)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Notification, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, f.items[i])
	}
	return out
}
