package attendance

import "errors"

// Attendance domain errors
var (
	// Sequencing errors
	ErrAlreadyCheckedIn    = errors.New("you have already checked in today")
	ErrNotCheckedIn        = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut   = errors.New("you have already checked out")
	ErrBreakAlreadyOpen    = errors.New("a break is already in progress")
	ErrNoOpenBreak         = errors.New("there is no break to end")
	ErrOnBreakMustEndFirst = errors.New("end your break before checking out")
	ErrDayFinalized        = errors.New("attendance for this day has already been finalized")

	// Override errors
	ErrInvalidOverride        = errors.New("override would violate record invariants")
	ErrOverrideReasonRequired = errors.New("a reason is required for manual overrides")
	ErrUnknownOverrideField   = errors.New("unknown override field")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
