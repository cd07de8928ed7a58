// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"
)

// DirectoryService manages the employee directory: provisioning new
// accounts and serving profile lookups. It backs the seed command and
// the read-only directory endpoints.
type DirectoryService struct {
	employees EmployeeRepository
	hasher    PasswordHasher
	logger    *slog.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(employees EmployeeRepository, hasher PasswordHasher, logger *slog.Logger) (*DirectoryService, error) {
	if employees == nil {
		return nil, oops.Errorf("employees repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryService{employees: employees, hasher: hasher, logger: logger}, nil
}

// ProvisionInput describes a new account. Password is optional; when
// empty the account is created passwordless and the employee sets one
// through password recovery.
type ProvisionInput struct {
	EmployeeID    string
	OfficialEmail string
	FirstName     string
	LastName      string
	Department    string
	Designation   string
	Password      string
}

// Provision creates an employee account. Duplicate employee IDs or
// emails surface as EMPLOYEE_CONFLICT from the repository.
func (s *DirectoryService) Provision(ctx context.Context, in ProvisionInput) (*Employee, error) {
	emp, err := NewEmployee(in.EmployeeID, in.OfficialEmail, in.FirstName, in.LastName)
	if err != nil {
		return nil, err
	}
	emp.Department = in.Department
	emp.Designation = in.Designation

	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, oops.Code("PROVISION_FAILED").
				With("operation", "hash initial password").
				Wrap(err)
		}
		emp.Credential = CredentialSet(hash)
	}

	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "employee provisioned",
		"employee_id", emp.EmployeeID,
		"has_password", emp.Credential.IsSet(),
	)
	return emp, nil
}

// UpdateProfileInput carries profile field changes. Nil fields are left
// untouched; the employee ID itself is immutable.
type UpdateProfileInput struct {
	OfficialEmail *string
	FirstName     *string
	LastName      *string
	Department    *string
	Designation   *string
}

// UpdateProfile rewrites the mutable profile fields of an employee and
// returns the updated profile. A new email colliding with another
// account surfaces as EMPLOYEE_CONFLICT.
func (s *DirectoryService) UpdateProfile(ctx context.Context, employeeID string, in UpdateProfileInput) (Profile, error) {
	emp, err := s.employees.GetByID(ctx, NormalizeEmployeeID(employeeID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, oops.Code(CodeAccountNotFound).Errorf("employee not found")
		}
		return Profile{}, oops.Code("DIRECTORY_READ_FAILED").
			With("operation", "get employee by id").
			Wrap(err)
	}

	if in.OfficialEmail != nil {
		email := NormalizeEmail(*in.OfficialEmail)
		if email == "" || !strings.Contains(email, "@") {
			return Profile{}, oops.Code(CodeValidationFailed).
				With("official_email", email).
				Errorf("official email is not a valid address")
		}
		emp.OfficialEmail = email
	}
	if in.FirstName != nil {
		emp.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		emp.LastName = *in.LastName
	}
	if in.Department != nil {
		emp.Department = *in.Department
	}
	if in.Designation != nil {
		emp.Designation = *in.Designation
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return Profile{}, err
	}

	s.logger.InfoContext(ctx, "employee profile updated", "employee_id", emp.EmployeeID)
	return emp.Profile(), nil
}

// GetProfile returns the public profile for an employee ID.
func (s *DirectoryService) GetProfile(ctx context.Context, employeeID string) (Profile, error) {
	emp, err := s.employees.GetByID(ctx, NormalizeEmployeeID(employeeID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, oops.Code(CodeAccountNotFound).Errorf("employee not found")
		}
		return Profile{}, oops.Code("DIRECTORY_READ_FAILED").
			With("operation", "get employee by id").
			Wrap(err)
	}
	return emp.Profile(), nil
}

// ListProfiles returns public profiles for every employee, ordered by
// employee ID.
func (s *DirectoryService) ListProfiles(ctx context.Context) ([]Profile, error) {
	emps, err := s.employees.List(ctx)
	if err != nil {
		return nil, oops.Code("DIRECTORY_READ_FAILED").
			With("operation", "list employees").
			Wrap(err)
	}
	profiles := make([]Profile, 0, len(emps))
	for _, emp := range emps {
		profiles = append(profiles, emp.Profile())
	}
	return profiles, nil
}
