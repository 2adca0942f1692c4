package report

// AttendanceSummary is a per-employee rollup over a date range. Derived on
// demand, never stored.
type AttendanceSummary struct {
	EmployeeID           string  `json:"employee_id"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	TotalDays            int     `json:"total_days"`
	PresentDays          int     `json:"present_days"`
	AbsentDays           int     `json:"absent_days"`
	LateDays             int     `json:"late_days"`
	HalfDays             int     `json:"half_days"`
	LeaveDays            int     `json:"leave_days"`
	TotalWorkingHours    float64 `json:"total_working_hours"`
	AverageWorkingHours  float64 `json:"average_working_hours"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// OrgStats is the org-wide picture of a single day for the admin overview.
type OrgStats struct {
	Date           string `json:"date"`
	TotalEmployees int    `json:"total_employees"`
	Present        int    `json:"present"`
	Absent         int    `json:"absent"`
	Late           int    `json:"late"`
	HalfDay        int    `json:"half_day"`
	OnLeave        int    `json:"on_leave"`
	OnBreak        int    `json:"on_break"`
	CheckedIn      int    `json:"checked_in"`
	NotYetIn       int    `json:"not_yet_in"`
}
