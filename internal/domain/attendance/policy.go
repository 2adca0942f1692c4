package attendance

import (
	"time"

	"github.com/tempora-hr/attendance-backend-go/internal/pkg/timeutil"
)

// Policy holds the organization's attendance rules. Scheduled start and the
// absence cutoff are local times of day ("15:04") in Location.
type Policy struct {
	Location              *time.Location
	ScheduledStart        string
	LateThresholdMinutes  int
	HalfDayThresholdHours float64
	AbsenceCutoff         string
}

// ScheduledStartOn materializes the scheduled start instant for a working day.
func (p Policy) ScheduledStartOn(date string) (time.Time, error) {
	return timeutil.AtTimeOfDay(date, p.ScheduledStart, p.Location)
}

// CutoffOn materializes the auto-absence cutoff instant for a working day.
func (p Policy) CutoffOn(date string) (time.Time, error) {
	return timeutil.AtTimeOfDay(date, p.AbsenceCutoff, p.Location)
}

// IsLate reports whether a check-in instant falls after the grace limit
// (scheduled start plus the late threshold). Exactly on the limit is on time.
func (p Policy) IsLate(checkIn time.Time, date string) bool {
	start, err := p.ScheduledStartOn(date)
	if err != nil {
		return false
	}
	grace := start.Add(time.Duration(p.LateThresholdMinutes) * time.Minute)
	return checkIn.After(grace)
}

// DeriveStatus computes the record's status from its timestamps and the
// policy. Precedence is authoritative: pre-flagged non-working day, then
// OnLeave, then Absent, then Late, then HalfDay, then Present. Re-deriving
// from stored timestamps must reproduce the stored status.
func DeriveStatus(a *Attendance, p Policy, now time.Time) Status {
	if a.Status.NonWorking() {
		return a.Status
	}
	if a.Status == StatusOnLeave {
		return StatusOnLeave
	}
	if a.CheckIn == nil {
		cutoff, err := p.CutoffOn(a.Date)
		if err == nil && !now.Before(cutoff) {
			return StatusAbsent
		}
		return StatusPending
	}
	if p.IsLate(a.CheckIn.In(p.Location), a.Date) {
		return StatusLate
	}
	if a.CheckOut != nil && !a.LeaveApproved &&
		float64(a.WorkMinutes) < p.HalfDayThresholdHours*60 {
		return StatusHalfDay
	}
	return StatusPresent
}
