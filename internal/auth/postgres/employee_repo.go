// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

// Package postgres provides PostgreSQL implementations of auth repositories.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/staffhub/staffhub/internal/auth"
)

// poolIface is the subset of pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it, so repository tests run against a
// mock pool instead of a live database.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EmployeeRepository implements auth.EmployeeRepository using PostgreSQL.
type EmployeeRepository struct {
	pool poolIface
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(pool poolIface) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create stores a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, emp *auth.Employee) error {
	var passwordHash *string
	if emp.Credential.IsSet() {
		h := emp.Credential.Hash()
		passwordHash = &h
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO employees (
			employee_id, official_email, first_name, last_name,
			department, designation, password_hash, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		emp.EmployeeID,
		emp.OfficialEmail,
		emp.FirstName,
		emp.LastName,
		emp.Department,
		emp.Designation,
		passwordHash,
		emp.CreatedAt,
		emp.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code(auth.CodeEmployeeConflict).
				With("employee_id", emp.EmployeeID).
				With("constraint", pgErr.ConstraintName).
				Wrapf(err, "employee ID or email already in use")
		}
		return oops.Code("EMPLOYEE_CREATE_FAILED").
			With("operation", "insert employee").
			With("employee_id", emp.EmployeeID).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an employee by employee_id.
func (r *EmployeeRepository) GetByID(ctx context.Context, employeeID string) (*auth.Employee, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT employee_id, official_email, first_name, last_name,
		       department, designation, password_hash, created_at, updated_at
		FROM employees
		WHERE employee_id = $1
	`, employeeID)

	emp, err := r.scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeAccountNotFound).
			With("employee_id", employeeID).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("EMPLOYEE_GET_BY_ID_FAILED").
			With("operation", "get employee by id").
			With("employee_id", employeeID).
			Wrap(err)
	}
	return emp, nil
}

// GetByLogin retrieves an employee by the (employee_id, official_email)
// pair. A mismatch on either column yields the same ErrNotFound.
func (r *EmployeeRepository) GetByLogin(ctx context.Context, employeeID, officialEmail string) (*auth.Employee, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT employee_id, official_email, first_name, last_name,
		       department, designation, password_hash, created_at, updated_at
		FROM employees
		WHERE employee_id = $1 AND official_email = $2
	`, employeeID, officialEmail)

	emp, err := r.scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeAccountNotFound).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("EMPLOYEE_GET_BY_LOGIN_FAILED").
			With("operation", "get employee by login pair").
			Wrap(err)
	}
	return emp, nil
}

// List returns all employees ordered by employee_id.
func (r *EmployeeRepository) List(ctx context.Context) ([]*auth.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT employee_id, official_email, first_name, last_name,
		       department, designation, password_hash, created_at, updated_at
		FROM employees
		ORDER BY employee_id
	`)
	if err != nil {
		return nil, oops.Code("EMPLOYEE_LIST_FAILED").
			With("operation", "list employees").
			Wrap(err)
	}
	defer rows.Close()

	var emps []*auth.Employee
	for rows.Next() {
		emp, err := r.scanEmployeeRow(rows)
		if err != nil {
			return nil, oops.Code("EMPLOYEE_SCAN_FAILED").
				With("operation", "scan employee row").
				Wrap(err)
		}
		emps = append(emps, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("EMPLOYEE_ROWS_ERROR").
			With("operation", "iterate employee rows").
			Wrap(err)
	}

	return emps, nil
}

// Update rewrites the mutable profile fields of an employee.
func (r *EmployeeRepository) Update(ctx context.Context, emp *auth.Employee) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE employees SET
			official_email = $2,
			first_name = $3,
			last_name = $4,
			department = $5,
			designation = $6,
			updated_at = $7
		WHERE employee_id = $1
	`,
		emp.EmployeeID,
		emp.OfficialEmail,
		emp.FirstName,
		emp.LastName,
		emp.Department,
		emp.Designation,
		time.Now(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code(auth.CodeEmployeeConflict).
				With("employee_id", emp.EmployeeID).
				With("constraint", pgErr.ConstraintName).
				Wrapf(err, "email already in use")
		}
		return oops.Code("EMPLOYEE_UPDATE_FAILED").
			With("operation", "update employee").
			With("employee_id", emp.EmployeeID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(auth.CodeAccountNotFound).
			With("employee_id", emp.EmployeeID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces only the stored password hash.
func (r *EmployeeRepository) UpdatePassword(ctx context.Context, employeeID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE employees SET password_hash = $2, updated_at = $3
		WHERE employee_id = $1
	`, employeeID, passwordHash, time.Now())
	if err != nil {
		return oops.Code("EMPLOYEE_UPDATE_PASSWORD_FAILED").
			With("operation", "update password_hash").
			With("employee_id", employeeID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(auth.CodeAccountNotFound).
			With("employee_id", employeeID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanEmployee scans a single row into an Employee.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *EmployeeRepository) scanEmployee(row pgx.Row) (*auth.Employee, error) {
	var (
		employeeID    string
		officialEmail string
		firstName     string
		lastName      string
		department    string
		designation   string
		passwordHash  *string
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(&employeeID, &officialEmail, &firstName, &lastName,
		&department, &designation, &passwordHash, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("EMPLOYEE_SCAN_FAILED").
			With("operation", "scan employee").
			Wrap(err)
	}

	return buildEmployee(employeeID, officialEmail, firstName, lastName,
		department, designation, passwordHash, createdAt, updatedAt), nil
}

// scanEmployeeRow scans a row from a rows iterator into an Employee.
func (r *EmployeeRepository) scanEmployeeRow(rows pgx.Rows) (*auth.Employee, error) {
	var (
		employeeID    string
		officialEmail string
		firstName     string
		lastName      string
		department    string
		designation   string
		passwordHash  *string
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := rows.Scan(&employeeID, &officialEmail, &firstName, &lastName,
		&department, &designation, &passwordHash, &createdAt, &updatedAt)
	if err != nil {
		return nil, oops.Code("EMPLOYEE_SCAN_FAILED").
			With("operation", "scan employee row").
			Wrap(err)
	}

	return buildEmployee(employeeID, officialEmail, firstName, lastName,
		department, designation, passwordHash, createdAt, updatedAt), nil
}

// buildEmployee constructs an Employee from scanned values. A NULL
// password_hash maps to the unset credential state.
func buildEmployee(
	employeeID, officialEmail, firstName, lastName, department, designation string,
	passwordHash *string,
	createdAt, updatedAt time.Time,
) *auth.Employee {
	cred := auth.CredentialUnset()
	if passwordHash != nil && *passwordHash != "" {
		cred = auth.CredentialSet(*passwordHash)
	}

	return &auth.Employee{
		EmployeeID:    employeeID,
		OfficialEmail: officialEmail,
		FirstName:     firstName,
		LastName:      lastName,
		Department:    department,
		Designation:   designation,
		Credential:    cred,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// Compile-time interface check.
var _ auth.EmployeeRepository = (*EmployeeRepository)(nil)
