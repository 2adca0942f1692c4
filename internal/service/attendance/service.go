package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tempora-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/employee"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/notification"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/lock"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/timeutil"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendanceRepo  attendance.AttendanceRepository
	overrideRepo    attendance.OverrideRepository
	employeeRepo    employee.EmployeeRepository
	notificationSvc notification.Service
	policy          attendance.Policy
	clk             clock.Clock
	locks           *lock.Keyed
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	overrideRepo attendance.OverrideRepository,
	employeeRepo employee.EmployeeRepository,
	notificationSvc notification.Service,
	policy attendance.Policy,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo:  attendanceRepo,
		overrideRepo:    overrideRepo,
		employeeRepo:    employeeRepo,
		notificationSvc: notificationSvc,
		policy:          policy,
		clk:             clk,
		locks:           lock.NewKeyed(),
	}
}

func recordKey(employeeID, date string) string {
	return employeeID + "|" + date
}

// notify is fire-and-forget: generator failures never fail the attendance
// action that triggered them.
func (a *AttendanceServiceImpl) notify(ctx context.Context, employeeID string, t notification.NotificationType, message string) {
	if a.notificationSvc == nil {
		return
	}
	err := a.notificationSvc.Notify(ctx, notification.CreateNotificationRequest{
		EmployeeID: employeeID,
		Type:       t,
		Message:    message,
	})
	if err != nil {
		slog.Error("Failed to emit attendance notification",
			"employee_id", employeeID, "type", t, "error", err)
	}
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	nowUTC := a.clk.Now().UTC()
	date := timeutil.DayString(nowUTC, a.policy.Location)

	unlock := a.locks.Lock(recordKey(employeeID, date))
	defer unlock()

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's record: %w", err)
	}

	if rec != nil {
		if rec.CheckIn != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		// Only the untouched pending state accepts a check-in; days closed
		// administratively (absent, on leave, weekend, holiday) stay closed.
		if rec.Status != attendance.StatusPending {
			return attendance.AttendanceResponse{}, attendance.ErrDayFinalized
		}
	} else {
		rec = &attendance.Attendance{
			EmployeeID: employeeID,
			Date:       date,
			Status:     attendance.StatusPending,
		}
	}

	rec.CheckIn = &nowUTC
	rec.Recalculate()

	late := a.policy.IsLate(nowUTC.In(a.policy.Location), date)
	if late {
		rec.Status = attendance.StatusLate
	} else {
		rec.Status = attendance.StatusPresent
	}

	saved, err := a.saveRecord(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	clockIn := timeutil.FormatClock(nowUTC, a.policy.Location)
	if late {
		a.notify(ctx, employeeID, notification.TypeLateArrival,
			fmt.Sprintf("Late arrival: checked in at %s", clockIn))
	} else {
		a.notify(ctx, employeeID, notification.TypeCheckIn,
			fmt.Sprintf("Checked in at %s", clockIn))
	}

	return attendance.ToResponse(saved, &nowUTC), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, employeeID string, req attendance.StartBreakRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.clk.Now().UTC()
	date := timeutil.DayString(nowUTC, a.policy.Location)

	unlock := a.locks.Lock(recordKey(employeeID, date))
	defer unlock()

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's record: %w", err)
	}
	if rec == nil || rec.CheckIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if rec.CheckOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}
	if rec.OpenBreak() != nil {
		return attendance.AttendanceResponse{}, attendance.ErrBreakAlreadyOpen
	}

	rec.Breaks = append(rec.Breaks, attendance.BreakInterval{
		Type:  req.Type,
		Start: nowUTC,
	})

	saved, err := a.saveRecord(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.notify(ctx, employeeID, notification.TypeBreakStart,
		fmt.Sprintf("Break started at %s", timeutil.FormatClock(nowUTC, a.policy.Location)))

	return attendance.ToResponse(saved, &nowUTC), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	nowUTC := a.clk.Now().UTC()
	date := timeutil.DayString(nowUTC, a.policy.Location)

	unlock := a.locks.Lock(recordKey(employeeID, date))
	defer unlock()

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's record: %w", err)
	}
	if rec == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoOpenBreak
	}
	open := rec.OpenBreak()
	if open == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoOpenBreak
	}

	if _, err := timeutil.DurationMinutes(open.Start, nowUTC); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	open.End = &nowUTC
	rec.Recalculate()

	saved, err := a.saveRecord(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.notify(ctx, employeeID, notification.TypeBreakEnd,
		fmt.Sprintf("Break ended at %s (%d min)", timeutil.FormatClock(nowUTC, a.policy.Location), open.Minutes()))

	return attendance.ToResponse(saved, &nowUTC), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	nowUTC := a.clk.Now().UTC()
	date := timeutil.DayString(nowUTC, a.policy.Location)

	unlock := a.locks.Lock(recordKey(employeeID, date))
	defer unlock()

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's record: %w", err)
	}
	if rec == nil || rec.CheckIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if rec.CheckOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}
	if rec.OpenBreak() != nil {
		return attendance.AttendanceResponse{}, attendance.ErrOnBreakMustEndFirst
	}

	if _, err := timeutil.DurationMinutes(*rec.CheckIn, nowUTC); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec.CheckOut = &nowUTC
	rec.Recalculate()
	rec.Status = attendance.DeriveStatus(rec, a.policy, nowUTC)

	saved, err := a.saveRecord(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.notify(ctx, employeeID, notification.TypeCheckOut,
		fmt.Sprintf("Checked out at %s, worked %.1f hours",
			timeutil.FormatClock(nowUTC, a.policy.Location), float64(rec.WorkMinutes)/60.0))

	return attendance.ToResponse(saved, nil), nil
}

// GetToday implements attendance.AttendanceService. A missing record reads
// as an empty pending day, never as an error.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	nowUTC := a.clk.Now().UTC()
	date := timeutil.DayString(nowUTC, a.policy.Location)

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load today's record: %w", err)
	}
	if rec == nil {
		rec = &attendance.Attendance{
			EmployeeID: employeeID,
			Date:       date,
			Status:     attendance.StatusPending,
		}
	}

	return attendance.ToResponse(*rec, &nowUTC), nil
}

// ListMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, employeeID string, filter attendance.ListFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := a.attendanceRepo.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec, nil))
	}
	return responses, nil
}

// OverrideField implements attendance.AttendanceService. The administrative
// path bypasses the sequencing rules but re-validates the record's internal
// invariants after the change; one audit entry is appended per changed field.
func (a *AttendanceServiceImpl) OverrideField(ctx context.Context, req attendance.OverrideRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := a.attendanceRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	unlock := a.locks.Lock(recordKey(rec.EmployeeID, rec.Date))
	defer unlock()

	// Re-read under the lock so the edit applies to current state.
	fresh, err := a.attendanceRepo.GetByID(ctx, req.AttendanceID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	rec = fresh

	oldValue, err := applyOverride(&rec, req.Field, req.NewValue)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec.Recalculate()
	if err := rec.Validate(); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("%w: %v", attendance.ErrInvalidOverride, err)
	}
	if req.Field != "status" {
		rec.Status = attendance.DeriveStatus(&rec, a.policy, a.clk.Now().UTC())
	}

	now := a.clk.Now().UTC()
	rec.IsManualEntry = true
	rec.ModifiedBy = &req.Actor
	rec.ModifiedAt = &now

	if err := a.attendanceRepo.Update(ctx, rec); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to persist override: %w", err)
	}

	_, err = a.overrideRepo.Insert(ctx, attendance.AttendanceOverride{
		AttendanceID: rec.ID,
		Field:        req.Field,
		OldValue:     oldValue,
		NewValue:     req.NewValue,
		Reason:       req.Reason,
		OverriddenBy: req.Actor,
		OverriddenAt: now,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to append override audit entry: %w", err)
	}

	return attendance.ToResponse(rec, nil), nil
}

// applyOverride mutates one field from its string form and returns the old
// value for the audit trail. Timestamps are RFC3339; break fields address the
// record's last break interval.
func applyOverride(rec *attendance.Attendance, field, newValue string) (string, error) {
	parseInstant := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, ok := validator.IsValidDateTime(s)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an ISO-8601 instant", attendance.ErrInvalidOverride, s)
		}
		utc := t.UTC()
		return &utc, nil
	}
	formatOld := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}

	switch field {
	case "check_in":
		old := formatOld(rec.CheckIn)
		t, err := parseInstant(newValue)
		if err != nil {
			return "", err
		}
		rec.CheckIn = t
		return old, nil
	case "check_out":
		old := formatOld(rec.CheckOut)
		t, err := parseInstant(newValue)
		if err != nil {
			return "", err
		}
		rec.CheckOut = t
		return old, nil
	case "break_start":
		if len(rec.Breaks) == 0 {
			return "", fmt.Errorf("%w: record has no break to adjust", attendance.ErrInvalidOverride)
		}
		last := &rec.Breaks[len(rec.Breaks)-1]
		old := formatOld(&last.Start)
		t, err := parseInstant(newValue)
		if err != nil {
			return "", err
		}
		if t == nil {
			return "", fmt.Errorf("%w: break start cannot be cleared", attendance.ErrInvalidOverride)
		}
		last.Start = *t
		return old, nil
	case "break_end":
		if len(rec.Breaks) == 0 {
			return "", fmt.Errorf("%w: record has no break to adjust", attendance.ErrInvalidOverride)
		}
		last := &rec.Breaks[len(rec.Breaks)-1]
		old := formatOld(last.End)
		t, err := parseInstant(newValue)
		if err != nil {
			return "", err
		}
		last.End = t
		return old, nil
	case "status":
		old := string(rec.Status)
		s := attendance.Status(newValue)
		if !s.Valid() {
			return "", fmt.Errorf("%w: unknown status %q", attendance.ErrInvalidOverride, newValue)
		}
		rec.Status = s
		return old, nil
	case "notes":
		old := ""
		if rec.Notes != nil {
			old = *rec.Notes
		}
		if newValue == "" {
			rec.Notes = nil
		} else {
			rec.Notes = &newValue
		}
		return old, nil
	default:
		return "", attendance.ErrUnknownOverrideField
	}
}

// ListOverrides implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListOverrides(ctx context.Context, attendanceID string) ([]attendance.OverrideResponse, error) {
	if _, err := a.attendanceRepo.GetByID(ctx, attendanceID); err != nil {
		return nil, err
	}

	overrides, err := a.overrideRepo.ListByAttendance(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	responses := make([]attendance.OverrideResponse, 0, len(overrides))
	for _, ov := range overrides {
		responses = append(responses, attendance.OverrideResponse{
			ID:           ov.ID,
			AttendanceID: ov.AttendanceID,
			Field:        ov.Field,
			OldValue:     ov.OldValue,
			NewValue:     ov.NewValue,
			Reason:       ov.Reason,
			OverriddenBy: ov.OverriddenBy,
			OverriddenAt: ov.OverriddenAt.UTC().Format(time.RFC3339),
		})
	}
	return responses, nil
}

// RunAutoAbsenceSweep implements attendance.AttendanceService. The only path
// allowed to move a record out of the pending state without an employee
// action. The no-check-in condition is re-checked under the per-record lock,
// not from a stale read, so a concurrent check-in always wins.
func (a *AttendanceServiceImpl) RunAutoAbsenceSweep(ctx context.Context, date string) (attendance.SweepResult, error) {
	result := attendance.SweepResult{Date: date}

	cutoff, err := a.policy.CutoffOn(date)
	if err != nil {
		return result, err
	}
	if a.clk.Now().Before(cutoff) {
		return result, nil
	}

	employees, err := a.employeeRepo.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list active employees: %w", err)
	}

	for _, emp := range employees {
		marked, err := a.markAbsentIfMissing(ctx, emp.ID, date)
		if err != nil {
			slog.Error("Sweep: failed to evaluate employee",
				"employee_id", emp.ID, "date", date, "error", err)
			continue
		}
		if marked {
			result.MarkedAbsent++
		}
	}

	return result, nil
}

func (a *AttendanceServiceImpl) markAbsentIfMissing(ctx context.Context, employeeID, date string) (bool, error) {
	unlock := a.locks.Lock(recordKey(employeeID, date))
	defer unlock()

	rec, err := a.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return false, err
	}

	if rec != nil {
		if rec.CheckIn != nil || rec.Status != attendance.StatusPending {
			return false, nil
		}
		rec.Status = attendance.StatusAbsent
		rec.IsManualEntry = false
		if err := a.attendanceRepo.Update(ctx, *rec); err != nil {
			return false, err
		}
	} else {
		absent := attendance.Attendance{
			EmployeeID:    employeeID,
			Date:          date,
			Status:        attendance.StatusAbsent,
			IsManualEntry: false,
		}
		if _, err := a.attendanceRepo.Create(ctx, absent); err != nil {
			return false, err
		}
	}

	a.notify(ctx, employeeID, notification.TypeAbsence,
		fmt.Sprintf("Marked absent for %s: no check-in by %s", date, a.policy.AbsenceCutoff))
	return true, nil
}

func (a *AttendanceServiceImpl) saveRecord(ctx context.Context, rec *attendance.Attendance) (attendance.Attendance, error) {
	if rec.ID == "" {
		created, err := a.attendanceRepo.Create(ctx, *rec)
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
		return created, nil
	}
	if err := a.attendanceRepo.Update(ctx, *rec); err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return *rec, nil
}
