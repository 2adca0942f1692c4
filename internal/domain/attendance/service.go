package attendance

import (
	"context"
)

// AttendanceService is the attendance state machine. Each mutation accepts
// one action for an employee-day and produces the next legal record state or
// a typed error; illegal transitions are rejected, never coerced.
type AttendanceService interface {
	// CheckIn opens today's working session
	CheckIn(ctx context.Context, employeeID string) (AttendanceResponse, error)

	// StartBreak opens a break within the current session
	StartBreak(ctx context.Context, employeeID string, req StartBreakRequest) (AttendanceResponse, error)

	// EndBreak closes the open break
	EndBreak(ctx context.Context, employeeID string) (AttendanceResponse, error)

	// CheckOut closes today's session and finalizes hours and status
	CheckOut(ctx context.Context, employeeID string) (AttendanceResponse, error)

	// GetToday returns today's record, or an empty pending view when none exists
	GetToday(ctx context.Context, employeeID string) (AttendanceResponse, error)

	// ListMyAttendance returns an employee's records in a date range
	ListMyAttendance(ctx context.Context, employeeID string, filter ListFilter) ([]AttendanceResponse, error)

	// OverrideField applies an audited manual correction to a record
	OverrideField(ctx context.Context, req OverrideRequest) (AttendanceResponse, error)

	// ListOverrides returns the audit trail of a record
	ListOverrides(ctx context.Context, attendanceID string) ([]OverrideResponse, error)

	// RunAutoAbsenceSweep marks employees with no check-in as absent once the
	// cutoff has passed. Idempotent; returns how many were newly marked.
	RunAutoAbsenceSweep(ctx context.Context, date string) (SweepResult, error)
}
