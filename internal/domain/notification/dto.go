package notification

import "time"

// CreateNotificationRequest is what the attendance state machine and the
// auto-absence sweep hand to the generator.
type CreateNotificationRequest struct {
	EmployeeID string
	Type       NotificationType
	Message    string
}

// NotificationResponse is the wire form of one notification.
type NotificationResponse struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employee_id"`
	Type       NotificationType `json:"type"`
	Message    string           `json:"message"`
	Priority   Priority         `json:"priority"`
	IsRead     bool             `json:"is_read"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NotificationListResponse is a page of notifications plus the unread count.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// SSEEvent is one event pushed to a live notification stream.
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
