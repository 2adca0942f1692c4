package employee

import (
	"context"
)

// EmployeeRepository defines read access to the employee master data owned
// by the surrounding HR system.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}
