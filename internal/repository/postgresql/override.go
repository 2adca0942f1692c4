package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/database"
)

type overrideRepository struct {
	db *database.DB
}

// Insert implements attendance.OverrideRepository.
func (o *overrideRepository) Insert(ctx context.Context, ov attendance.AttendanceOverride) (attendance.AttendanceOverride, error) {
	q := GetQuerier(ctx, o.db)

	if ov.ID == "" {
		ov.ID = uuid.New().String()
	}

	query := `
		INSERT INTO attendance_overrides (
			id, attendance_id, field, old_value, new_value, reason, overridden_by, overridden_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		ov.ID, ov.AttendanceID, ov.Field, ov.OldValue, ov.NewValue,
		ov.Reason, ov.OverriddenBy, ov.OverriddenAt,
	)
	if err != nil {
		return attendance.AttendanceOverride{}, fmt.Errorf("failed to insert attendance override: %w", err)
	}

	return ov, nil
}

// ListByAttendance implements attendance.OverrideRepository.
func (o *overrideRepository) ListByAttendance(ctx context.Context, attendanceID string) ([]attendance.AttendanceOverride, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT id, attendance_id, field, old_value, new_value, reason, overridden_by, overridden_at
		FROM attendance_overrides
		WHERE attendance_id = $1
		ORDER BY overridden_at ASC
	`

	rows, err := q.Query(ctx, query, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance overrides: %w", err)
	}
	defer rows.Close()

	var overrides []attendance.AttendanceOverride
	for rows.Next() {
		var ov attendance.AttendanceOverride
		err := rows.Scan(
			&ov.ID, &ov.AttendanceID, &ov.Field, &ov.OldValue, &ov.NewValue,
			&ov.Reason, &ov.OverriddenBy, &ov.OverriddenAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance override: %w", err)
		}
		overrides = append(overrides, ov)
	}

	return overrides, rows.Err()
}

func NewOverrideRepository(db *database.DB) attendance.OverrideRepository {
	return &overrideRepository{db: db}
}
