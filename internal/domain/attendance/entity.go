package attendance

import (
	"fmt"
	"time"
)

// Status is the closed set of daily attendance statuses.
type Status string

const (
	StatusPending Status = "pending"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusOnLeave Status = "on_leave"
	StatusHalfDay Status = "half_day"
	StatusWeekend Status = "weekend"
	StatusHoliday Status = "holiday"
)

// AllStatuses returns every valid attendance status.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusPresent,
		StatusAbsent,
		StatusLate,
		StatusOnLeave,
		StatusHalfDay,
		StatusWeekend,
		StatusHoliday,
	}
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// NonWorking reports whether the day is pre-flagged as not a working day.
func (s Status) NonWorking() bool {
	return s == StatusWeekend || s == StatusHoliday
}

// BreakInterval is one break within a working session. End is nil while the
// break is still open. The record owns an ordered sequence of these, so more
// than one break per day is representable.
type BreakInterval struct {
	Type  string
	Start time.Time
	End   *time.Time
}

// Minutes returns the closed interval's length in whole minutes, 0 while open.
func (b BreakInterval) Minutes() int {
	if b.End == nil {
		return 0
	}
	return int(b.End.Sub(b.Start).Minutes())
}

// Attendance is one employee's record for one calendar day. Date is the
// working day in the organization's timezone; CheckIn/CheckOut and break
// bounds are absolute UTC instants.
type Attendance struct {
	ID            string
	EmployeeID    string
	Date          string
	CheckIn       *time.Time
	CheckOut      *time.Time
	Breaks        []BreakInterval
	BreakMinutes  int
	TotalMinutes  int
	WorkMinutes   int
	Status        Status
	LeaveApproved bool
	IsManualEntry bool
	Notes         *string
	ModifiedBy    *string
	ModifiedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	EmployeeName *string
}

// AttendanceOverride is the audit entry for one manually corrected field on a
// record. Append-only.
type AttendanceOverride struct {
	ID           string
	AttendanceID string
	Field        string
	OldValue     string
	NewValue     string
	Reason       string
	OverriddenBy string
	OverriddenAt time.Time
}

// OpenBreak returns the currently open break interval, or nil.
func (a *Attendance) OpenBreak() *BreakInterval {
	for i := range a.Breaks {
		if a.Breaks[i].End == nil {
			return &a.Breaks[i]
		}
	}
	return nil
}

// Recalculate recomputes BreakMinutes, TotalMinutes and WorkMinutes from the
// timestamps. TotalMinutes stays 0 until checkout; WorkMinutes never goes
// negative.
func (a *Attendance) Recalculate() {
	breakMins := 0
	for _, b := range a.Breaks {
		breakMins += b.Minutes()
	}
	a.BreakMinutes = breakMins

	if a.CheckIn != nil && a.CheckOut != nil {
		a.TotalMinutes = int(a.CheckOut.Sub(*a.CheckIn).Minutes())
	} else {
		a.TotalMinutes = 0
	}

	a.WorkMinutes = a.TotalMinutes - a.BreakMinutes
	if a.WorkMinutes < 0 {
		a.WorkMinutes = 0
	}
}

// Validate checks the record's internal ordering invariants. It is run after
// every manual override; the state machine keeps them true by construction.
func (a *Attendance) Validate() error {
	if !a.Status.Valid() {
		return fmt.Errorf("unknown status %q", a.Status)
	}
	if a.CheckOut != nil {
		if a.CheckIn == nil {
			return fmt.Errorf("check-out recorded without a check-in")
		}
		if !a.CheckOut.After(*a.CheckIn) {
			return fmt.Errorf("check-out %s is not after check-in %s",
				a.CheckOut.Format(time.RFC3339), a.CheckIn.Format(time.RFC3339))
		}
	}

	open := 0
	for i, b := range a.Breaks {
		if a.CheckIn == nil {
			return fmt.Errorf("break recorded without a check-in")
		}
		if b.Start.Before(*a.CheckIn) {
			return fmt.Errorf("break %d starts before check-in", i)
		}
		if b.End != nil {
			if !b.End.After(b.Start) {
				return fmt.Errorf("break %d ends at or before its start", i)
			}
			if a.CheckOut != nil && b.End.After(*a.CheckOut) {
				return fmt.Errorf("break %d ends after check-out", i)
			}
		} else {
			open++
		}
		if a.CheckOut != nil && b.Start.After(*a.CheckOut) {
			return fmt.Errorf("break %d starts after check-out", i)
		}
	}
	if open > 1 {
		return fmt.Errorf("%d breaks open at once, at most one allowed", open)
	}
	if open == 1 && a.CheckOut != nil {
		return fmt.Errorf("record checked out with an open break")
	}
	return nil
}
