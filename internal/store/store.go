// Package store persists the notification log in a local SQLite
// database so notices survive restarts. Notifications enter the log
// only from realtime events; the bell UI marks them read or removes
// them.
package store

import (
	"context"

	"github.com/mfellner/pinnwand/internal/model"
)

// Store defines the persistence interface for the notification log.
type Store interface {
	// AddNotification appends a notification. A missing ID is filled
	// with a fresh UUID.
	AddNotification(ctx context.Context, n model.Notification) error

	// GetNotifications returns the full log, newest first.
	GetNotifications(ctx context.Context) ([]model.Notification, error)

	// UnreadCount returns the number of unread notifications.
	UnreadCount(ctx context.Context) (int, error)

	// MarkAllRead marks every notification as read.
	MarkAllRead(ctx context.Context) error

	// DeleteNotification removes a single notification.
	DeleteNotification(ctx context.Context, id string) error
}
