package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/tempora-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/employee"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/report"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/validator"
)

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
) report.ReportService {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
	}
}

// Summarize implements report.ReportService. Non-working days (weekend,
// holiday) are excluded from the denominator; present, late and half days all
// count as attended. Average working hours is over days with a check-in.
func (s *ReportServiceImpl) Summarize(ctx context.Context, employeeID, startDate, endDate string) (report.AttendanceSummary, error) {
	summary := report.AttendanceSummary{
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
	}

	var errs validator.ValidationErrors
	start, ok := validator.IsValidDate(startDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
	}
	end, ok := validator.IsValidDate(endDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
	}
	if len(errs) == 0 && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	if len(errs) > 0 {
		return summary, errs
	}

	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, attendance.ListFilter{
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	if err != nil {
		return summary, fmt.Errorf("failed to load records for summary: %w", err)
	}

	// Iteration order never changes the result, but keep it stable anyway.
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })

	totalWorkMinutes := 0
	daysWithCheckIn := 0

	for _, rec := range records {
		if rec.Status.NonWorking() {
			continue
		}
		summary.TotalDays++

		switch rec.Status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusAbsent:
			summary.AbsentDays++
		case attendance.StatusLate:
			summary.LateDays++
		case attendance.StatusHalfDay:
			summary.HalfDays++
		case attendance.StatusOnLeave:
			summary.LeaveDays++
		}

		if rec.CheckIn != nil {
			daysWithCheckIn++
			totalWorkMinutes += rec.WorkMinutes
		}
	}

	summary.TotalWorkingHours = float64(totalWorkMinutes) / 60.0
	if daysWithCheckIn > 0 {
		summary.AverageWorkingHours = summary.TotalWorkingHours / float64(daysWithCheckIn)
	}

	if summary.TotalDays > 0 {
		attended := summary.PresentDays + summary.LateDays + summary.HalfDays
		summary.AttendancePercentage = float64(attended) / float64(summary.TotalDays) * 100
	}

	return summary, nil
}

// OrgStats implements report.ReportService. NotYetIn counts active employees
// with no record and records still pending; OnBreak and CheckedIn describe
// the live session state, orthogonal to the daily status.
func (s *ReportServiceImpl) OrgStats(ctx context.Context, date string) (report.OrgStats, error) {
	stats := report.OrgStats{Date: date}

	if _, ok := validator.IsValidDate(date); !ok {
		return stats, validator.ValidationErrors{
			{Field: "date", Message: "must be YYYY-MM-DD"},
		}
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list active employees: %w", err)
	}
	stats.TotalEmployees = len(employees)

	records, err := s.attendanceRepo.ListByDate(ctx, date)
	if err != nil {
		return stats, fmt.Errorf("failed to load records for org stats: %w", err)
	}

	recorded := make(map[string]struct{}, len(records))
	for _, rec := range records {
		recorded[rec.EmployeeID] = struct{}{}

		switch rec.Status {
		case attendance.StatusPresent:
			stats.Present++
		case attendance.StatusAbsent:
			stats.Absent++
		case attendance.StatusLate:
			stats.Late++
		case attendance.StatusHalfDay:
			stats.HalfDay++
		case attendance.StatusOnLeave:
			stats.OnLeave++
		case attendance.StatusPending:
			stats.NotYetIn++
		}

		if rec.CheckIn != nil && rec.CheckOut == nil {
			if rec.OpenBreak() != nil {
				stats.OnBreak++
			} else {
				stats.CheckedIn++
			}
		}
	}

	for _, emp := range employees {
		if _, ok := recorded[emp.ID]; !ok {
			stats.NotYetIn++
		}
	}

	return stats, nil
}
