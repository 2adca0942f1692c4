package report

import (
	"context"
)

// ReportService computes attendance rollups. Both operations are read-only
// over record snapshots and must be deterministic for an identical record
// set.
type ReportService interface {
	// Summarize rolls up one employee's records over an inclusive date range
	Summarize(ctx context.Context, employeeID, startDate, endDate string) (AttendanceSummary, error)

	// OrgStats rolls up all employees for one day
	OrgStats(ctx context.Context, date string) (OrgStats, error)
}
