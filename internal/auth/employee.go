// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Employee ID validation constraints.
const (
	MinEmployeeIDLength = 3
	MaxEmployeeIDLength = 20
)

// employeeIDRegex matches identifiers like "EMP-1" or "SRN042":
// upper-case letters and digits with optional hyphen separators,
// starting with a letter.
var employeeIDRegex = regexp.MustCompile(`^[A-Z][A-Z0-9-]*$`)

// Credential is the tagged password state of an employee. A freshly
// provisioned account may have no password yet; that is a distinct
// state, not a nil hash scattered across call sites.
type Credential struct {
	hash string
	set  bool
}

// CredentialUnset returns the no-password-yet state.
func CredentialUnset() Credential {
	return Credential{}
}

// CredentialSet returns a Credential holding the given stored hash.
func CredentialSet(hash string) Credential {
	return Credential{hash: hash, set: true}
}

// IsSet reports whether a password hash exists.
func (c Credential) IsSet() bool {
	return c.set
}

// Hash returns the stored hash. Only meaningful when IsSet is true.
func (c Credential) Hash() string {
	return c.hash
}

// Employee is an identity record in the directory. Credential is never
// serialized to callers; see Profile.
type Employee struct {
	EmployeeID    string
	OfficialEmail string
	FirstName     string
	LastName      string
	Department    string
	Designation   string
	Credential    Credential
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the caller-visible projection of an Employee. It carries
// no credential material.
type Profile struct {
	EmployeeID    string `json:"employee_id"`
	OfficialEmail string `json:"official_email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
}

// Profile returns the public projection of the employee.
func (e *Employee) Profile() Profile {
	return Profile{
		EmployeeID:    e.EmployeeID,
		OfficialEmail: e.OfficialEmail,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		Department:    e.Department,
		Designation:   e.Designation,
	}
}

// NormalizeEmployeeID upper-cases and trims an employee identifier.
func NormalizeEmployeeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewEmployee creates an Employee with normalized identifiers.
// The credential starts unset; provisioning assigns it separately.
func NewEmployee(employeeID, officialEmail, firstName, lastName string) (*Employee, error) {
	employeeID = NormalizeEmployeeID(employeeID)
	officialEmail = NormalizeEmail(officialEmail)

	if err := ValidateEmployeeID(employeeID); err != nil {
		return nil, err
	}
	if officialEmail == "" || !strings.Contains(officialEmail, "@") {
		return nil, oops.Code(CodeValidationFailed).
			With("official_email", officialEmail).
			Errorf("official email is not a valid address")
	}

	now := time.Now()
	return &Employee{
		EmployeeID:    employeeID,
		OfficialEmail: officialEmail,
		FirstName:     firstName,
		LastName:      lastName,
		Credential:    CredentialUnset(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ValidateEmployeeID validates a normalized employee identifier.
func ValidateEmployeeID(id string) error {
	if id == "" {
		return oops.Code(CodeValidationFailed).Errorf("employee ID cannot be empty")
	}
	if len(id) < MinEmployeeIDLength {
		return oops.Code(CodeValidationFailed).
			With("min", MinEmployeeIDLength).
			Errorf("employee ID must be at least %d characters", MinEmployeeIDLength)
	}
	if len(id) > MaxEmployeeIDLength {
		return oops.Code(CodeValidationFailed).
			With("max", MaxEmployeeIDLength).
			Errorf("employee ID must be at most %d characters", MaxEmployeeIDLength)
	}
	if !employeeIDRegex.MatchString(id) {
		return oops.Code(CodeValidationFailed).
			Errorf("employee ID must start with a letter and contain only letters, digits, and hyphens")
	}
	return nil
}

// EmployeeRepository manages identity persistence. Implementations
// receive normalized identifiers from the services.
type EmployeeRepository interface {
	// Create stores a new employee. Uniqueness violations on
	// employee_id or official_email surface as EMPLOYEE_CONFLICT.
	Create(ctx context.Context, emp *Employee) error

	// GetByID retrieves an employee by employee_id.
	GetByID(ctx context.Context, employeeID string) (*Employee, error)

	// GetByLogin retrieves an employee by the (employee_id,
	// official_email) pair. Returns ErrNotFound when either half of
	// the pair does not match; callers must not distinguish which.
	GetByLogin(ctx context.Context, employeeID, officialEmail string) (*Employee, error)

	// List returns all employees ordered by employee_id.
	List(ctx context.Context) ([]*Employee, error)

	// Update rewrites the mutable profile fields of an employee.
	Update(ctx context.Context, emp *Employee) error

	// UpdatePassword replaces only the stored password hash.
	UpdatePassword(ctx context.Context, employeeID, passwordHash string) error
}
