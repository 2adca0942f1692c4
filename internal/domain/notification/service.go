package notification

import (
	"context"
)

// Service generates and serves attendance notifications. Notify is fire-and-
// forget from the caller's point of view: generator failures are logged and
// must never fail the attendance operation that triggered them.
type Service interface {
	// Notify records exactly one notification for a state transition,
	// with the priority fixed by the notification type
	Notify(ctx context.Context, req CreateNotificationRequest) error

	// GetNotifications lists an employee's notifications, newest first
	GetNotifications(ctx context.Context, employeeID string, unreadOnly bool) (*NotificationListResponse, error)

	// MarkAsRead marks one notification read; re-marking is a no-op
	MarkAsRead(ctx context.Context, id string) error

	// MarkAllAsRead marks everything read for an employee; idempotent
	MarkAllAsRead(ctx context.Context, employeeID string) error

	// Subscribe opens a live event stream for an employee
	Subscribe(ctx context.Context, employeeID string) (<-chan SSEEvent, func())

	// Stop flushes queued notifications and stops the workers
	Stop()
}
