package notification

import (
	"context"
	"time"
)

// Repository defines the notification store interface
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, ns []*Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByEmployee(ctx context.Context, employeeID string, unreadOnly bool) ([]*Notification, error)
	UnreadCount(ctx context.Context, employeeID string) (int, error)

	// MarkAsRead flips the read flag, stamping readAt; already-read rows are
	// left untouched. Returns false when the notification does not exist.
	MarkAsRead(ctx context.Context, id string, readAt time.Time) (bool, error)
	MarkAllAsRead(ctx context.Context, employeeID string, readAt time.Time) error
}
