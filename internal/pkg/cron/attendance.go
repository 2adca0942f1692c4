package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tempora-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/timeutil"
)

// AttendanceJobs owns the time-triggered attendance rules. The sweep runs on
// a short interval and the service itself no-ops before the cutoff, so the
// rule fires within minutes of the cutoff regardless of when the process
// started. Failures are logged and retried on the next tick; they never
// block an employee-initiated action.
type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	location      *time.Location
	clk           clock.Clock
}

func NewAttendanceJobs(
	attendanceSvc attendance.AttendanceService,
	location *time.Location,
	clk clock.Clock,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		location:      location,
		clk:           clk,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, sweepInterval time.Duration) {
	scheduler.AddJob("auto_absence_sweep", sweepInterval, j.RunAutoAbsenceSweep)
}

func (j *AttendanceJobs) RunAutoAbsenceSweep(ctx context.Context) error {
	today := timeutil.DayString(j.clk.Now(), j.location)

	result, err := j.attendanceSvc.RunAutoAbsenceSweep(ctx, today)
	if err != nil {
		return fmt.Errorf("auto-absence sweep for %s: %w", today, err)
	}

	if result.MarkedAbsent > 0 {
		slog.Info("Cron: Marked absent employees", "date", result.Date, "count", result.MarkedAbsent)
	}
	return nil
}
