package attendance

import (
	"context"
)

// AttendanceRepository defines data access for attendance records. Records
// are keyed by (employee, date); dates are "YYYY-MM-DD" strings in the
// organization's timezone.
type AttendanceRepository interface {
	// Create creates a new record including its break intervals
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// GetByID retrieves a record with its break intervals
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate retrieves the record for one employee-day,
	// or nil when none exists yet
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Attendance, error)

	// Update persists the record and replaces its break intervals
	Update(ctx context.Context, att Attendance) error

	// ListByEmployee retrieves an employee's records, oldest first
	ListByEmployee(ctx context.Context, employeeID string, filter ListFilter) ([]Attendance, error)

	// ListByDate retrieves every employee's record for one day
	ListByDate(ctx context.Context, date string) ([]Attendance, error)
}

// OverrideRepository is the append-only audit store for manual corrections.
type OverrideRepository interface {
	Insert(ctx context.Context, ov AttendanceOverride) (AttendanceOverride, error)
	ListByAttendance(ctx context.Context, attendanceID string) ([]AttendanceOverride, error)
}
