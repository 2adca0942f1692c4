package employee

import (
	"time"
)

// Employee is the slice of the employee master record the attendance core
// needs: who exists and whether they are expected to attend.
type Employee struct {
	ID        string
	FullName  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
