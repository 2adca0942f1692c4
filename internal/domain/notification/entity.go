package notification

import (
	"time"
)

// NotificationType represents the attendance event that produced a notice
type NotificationType string

const (
	TypeCheckIn     NotificationType = "check_in"
	TypeCheckOut    NotificationType = "check_out"
	TypeBreakStart  NotificationType = "break_start"
	TypeBreakEnd    NotificationType = "break_end"
	TypeAbsence     NotificationType = "absence"
	TypeLateArrival NotificationType = "late_arrival"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeCheckIn,
		TypeCheckOut,
		TypeBreakStart,
		TypeBreakEnd,
		TypeAbsence,
		TypeLateArrival,
	}
}

// Priority of a notification
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PriorityFor maps a notification type to its fixed priority.
func PriorityFor(t NotificationType) Priority {
	switch t {
	case TypeAbsence:
		return PriorityHigh
	case TypeLateArrival:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Notification is an attendance notice. Immutable once created except for
// the read flag.
type Notification struct {
	ID         string
	EmployeeID string
	Type       NotificationType
	Message    string
	Priority   Priority
	IsRead     bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}
