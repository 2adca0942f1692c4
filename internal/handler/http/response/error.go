package response

import (
	"errors"
	"net/http"

	"github.com/tempora-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/employee"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/notification"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/timeutil"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance state machine conflicts
	switch {
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "Not checked in yet")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrBreakAlreadyOpen):
		Conflict(w, "A break is already in progress")
	case errors.Is(err, attendance.ErrNoOpenBreak):
		Conflict(w, "No break in progress")
	case errors.Is(err, attendance.ErrOnBreakMustEndFirst):
		Conflict(w, "End the current break before checking out")
	case errors.Is(err, attendance.ErrDayFinalized):
		Conflict(w, "Today's record is already finalized")

	// Override errors
	case errors.Is(err, attendance.ErrOverrideReasonRequired):
		BadRequest(w, "A reason is required for manual overrides", nil)
	case errors.Is(err, attendance.ErrUnknownOverrideField):
		BadRequest(w, "Field cannot be overridden", nil)
	case errors.Is(err, attendance.ErrInvalidOverride):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, timeutil.ErrInvalidInterval):
		BadRequest(w, err.Error(), nil)

	// Not found
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
