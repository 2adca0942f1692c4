package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.check_in, a.check_out,
	a.break_minutes, a.total_minutes, a.work_minutes,
	a.status, a.leave_approved, a.is_manual_entry, a.notes,
	a.modified_by, a.modified_at, a.created_at, a.updated_at
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut,
		&att.BreakMinutes, &att.TotalMinutes, &att.WorkMinutes,
		&att.Status, &att.LeaveApproved, &att.IsManualEntry, &att.Notes,
		&att.ModifiedBy, &att.ModifiedAt, &att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// loadBreaks attaches the ordered break intervals to each record.
func (a *attendanceRepository) loadBreaks(ctx context.Context, atts []attendance.Attendance) error {
	if len(atts) == 0 {
		return nil
	}
	q := GetQuerier(ctx, a.db)

	ids := make([]string, len(atts))
	index := make(map[string]*attendance.Attendance, len(atts))
	for i := range atts {
		ids[i] = atts[i].ID
		index[atts[i].ID] = &atts[i]
	}

	rows, err := q.Query(ctx, `
		SELECT attendance_id, break_type, start_at, end_at
		FROM attendance_breaks
		WHERE attendance_id = ANY($1)
		ORDER BY attendance_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query attendance breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attID string
		var b attendance.BreakInterval
		if err := rows.Scan(&attID, &b.Type, &b.Start, &b.End); err != nil {
			return fmt.Errorf("failed to scan attendance break: %w", err)
		}
		if att, ok := index[attID]; ok {
			att.Breaks = append(att.Breaks, b)
		}
	}
	return rows.Err()
}

func (a *attendanceRepository) saveBreaks(ctx context.Context, attendanceID string, breaks []attendance.BreakInterval) error {
	q := GetQuerier(ctx, a.db)

	if _, err := q.Exec(ctx, `DELETE FROM attendance_breaks WHERE attendance_id = $1`, attendanceID); err != nil {
		return fmt.Errorf("failed to clear attendance breaks: %w", err)
	}

	for i, b := range breaks {
		_, err := q.Exec(ctx, `
			INSERT INTO attendance_breaks (id, attendance_id, break_type, start_at, end_at, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), attendanceID, b.Type, b.Start, b.End, i)
		if err != nil {
			return fmt.Errorf("failed to insert attendance break: %w", err)
		}
	}
	return nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	err := WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, a.db)

		query := `
			INSERT INTO attendances (
				id, employee_id, date, check_in, check_out,
				break_minutes, total_minutes, work_minutes,
				status, leave_approved, is_manual_entry, notes,
				modified_by, modified_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
			) RETURNING created_at, updated_at
		`

		if newAttendance.ID == "" {
			newAttendance.ID = uuid.New().String()
		}

		err := q.QueryRow(txCtx, query,
			newAttendance.ID,
			newAttendance.EmployeeID,
			newAttendance.Date,
			newAttendance.CheckIn,
			newAttendance.CheckOut,
			newAttendance.BreakMinutes,
			newAttendance.TotalMinutes,
			newAttendance.WorkMinutes,
			newAttendance.Status,
			newAttendance.LeaveApproved,
			newAttendance.IsManualEntry,
			newAttendance.Notes,
			newAttendance.ModifiedBy,
			newAttendance.ModifiedAt,
		).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}

		return a.saveBreaks(txCtx, newAttendance.ID, newAttendance.Breaks)
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `, e.full_name AS employee_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
	`

	var att attendance.Attendance
	err := q.QueryRow(ctx, query, id).Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut,
		&att.BreakMinutes, &att.TotalMinutes, &att.WorkMinutes,
		&att.Status, &att.LeaveApproved, &att.IsManualEntry, &att.Notes,
		&att.ModifiedBy, &att.ModifiedAt, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	atts := []attendance.Attendance{att}
	if err := a.loadBreaks(ctx, atts); err != nil {
		return attendance.Attendance{}, err
	}
	return atts[0], nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.date = $2
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No record yet for this employee-day
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	atts := []attendance.Attendance{att}
	if err := a.loadBreaks(ctx, atts); err != nil {
		return nil, err
	}
	return &atts[0], nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	return WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, a.db)

		query := `
			UPDATE attendances SET
				check_in = $1, check_out = $2,
				break_minutes = $3, total_minutes = $4, work_minutes = $5,
				status = $6, leave_approved = $7, is_manual_entry = $8, notes = $9,
				modified_by = $10, modified_at = $11, updated_at = NOW()
			WHERE id = $12
			RETURNING id
		`

		var updatedID string
		err := q.QueryRow(txCtx, query,
			att.CheckIn, att.CheckOut,
			att.BreakMinutes, att.TotalMinutes, att.WorkMinutes,
			att.Status, att.LeaveApproved, att.IsManualEntry, att.Notes,
			att.ModifiedBy, att.ModifiedAt,
			att.ID,
		).Scan(&updatedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return attendance.ErrAttendanceNotFound
			}
			return fmt.Errorf("failed to update attendance: %w", err)
		}

		return a.saveBreaks(txCtx, att.ID, att.Breaks)
	})
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.ListFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE ` + baseWhere + `
		ORDER BY a.date ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := a.loadBreaks(ctx, attendances); err != nil {
		return nil, err
	}
	return attendances, nil
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `, e.full_name AS employee_name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.date = $1
		ORDER BY a.employee_id ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances by date: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut,
			&att.BreakMinutes, &att.TotalMinutes, &att.WorkMinutes,
			&att.Status, &att.LeaveApproved, &att.IsManualEntry, &att.Notes,
			&att.ModifiedBy, &att.ModifiedAt, &att.CreatedAt, &att.UpdatedAt,
			&att.EmployeeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := a.loadBreaks(ctx, attendances); err != nil {
		return nil, err
	}
	return attendances, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
