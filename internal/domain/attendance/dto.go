package attendance

import (
	"time"

	"github.com/tempora-hr/attendance-backend-go/internal/pkg/validator"
)

// StartBreakRequest carries the break type for a break-start action.
type StartBreakRequest struct {
	Type string `json:"type"`
}

// Validate checks the break type.
func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Type) {
		r.Type = "rest"
	}
	if !validator.IsInSlice(r.Type, []string{"rest", "lunch", "prayer", "other"}) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be one of rest, lunch, prayer, other"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// OverrideRequest is an administrative correction to a single record field.
type OverrideRequest struct {
	AttendanceID string `json:"-"`
	Field        string `json:"field"`
	NewValue     string `json:"new_value"`
	Reason       string `json:"reason"`
	Actor        string `json:"-"`
}

// OverridableFields lists the record fields the override path may change.
func OverridableFields() []string {
	return []string{"check_in", "check_out", "break_start", "break_end", "status", "notes"}
}

// Validate checks structural validity; invariant checks happen after apply.
func (r *OverrideRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsInSlice(r.Field, OverridableFields()) {
		errs = append(errs, validator.ValidationError{Field: "field", Message: "not an overridable field"})
	}
	if validator.IsEmpty(r.Reason) {
		return ErrOverrideReasonRequired
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListFilter narrows an employee's own record listing.
type ListFilter struct {
	StartDate *string
	EndDate   *string
	Status    *Status
}

// Validate checks date formats and the status value.
func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if f.Status != nil && !f.Status.Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "unknown status"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BreakResponse is the wire form of one break interval.
type BreakResponse struct {
	Type    string  `json:"type"`
	StartAt string  `json:"start_at"`
	EndAt   *string `json:"end_at,omitempty"`
	Minutes int     `json:"minutes"`
}

// AttendanceResponse is the wire form of one record.
type AttendanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	Date          string          `json:"date"`
	CheckIn       *string         `json:"check_in,omitempty"`
	CheckOut      *string         `json:"check_out,omitempty"`
	Breaks        []BreakResponse `json:"breaks,omitempty"`
	BreakMinutes  int             `json:"break_minutes"`
	TotalHours    float64         `json:"total_hours"`
	WorkingHours  float64         `json:"working_hours"`
	Status        Status          `json:"status"`
	IsManualEntry bool            `json:"is_manual_entry"`
	Notes         *string         `json:"notes,omitempty"`
}

// OverrideResponse is the wire form of one audit entry.
type OverrideResponse struct {
	ID           string `json:"id"`
	AttendanceID string `json:"attendance_id"`
	Field        string `json:"field"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
	Reason       string `json:"reason"`
	OverriddenBy string `json:"overridden_by"`
	OverriddenAt string `json:"overridden_at"`
}

// SweepResult reports one auto-absence sweep run.
type SweepResult struct {
	Date         string `json:"date"`
	MarkedAbsent int    `json:"marked_absent"`
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// ToResponse converts a record to its wire form. When the record is still
// open, liveNow is used to show working hours so far; it is never persisted.
func ToResponse(a Attendance, liveNow *time.Time) AttendanceResponse {
	breaks := make([]BreakResponse, 0, len(a.Breaks))
	for _, b := range a.Breaks {
		breaks = append(breaks, BreakResponse{
			Type:    b.Type,
			StartAt: *formatInstant(&b.Start),
			EndAt:   formatInstant(b.End),
			Minutes: b.Minutes(),
		})
	}

	totalMins := a.TotalMinutes
	workMins := a.WorkMinutes
	if a.CheckIn != nil && a.CheckOut == nil && liveNow != nil && liveNow.After(*a.CheckIn) {
		totalMins = int(liveNow.Sub(*a.CheckIn).Minutes())
		workMins = totalMins - a.BreakMinutes
		if workMins < 0 {
			workMins = 0
		}
	}

	return AttendanceResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		EmployeeName:  a.EmployeeName,
		Date:          a.Date,
		CheckIn:       formatInstant(a.CheckIn),
		CheckOut:      formatInstant(a.CheckOut),
		Breaks:        breaks,
		BreakMinutes:  a.BreakMinutes,
		TotalHours:    float64(totalMins) / 60.0,
		WorkingHours:  float64(workMins) / 60.0,
		Status:        a.Status,
		IsManualEntry: a.IsManualEntry,
		Notes:         a.Notes,
	}
}
