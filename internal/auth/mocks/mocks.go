// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

// Package mocks provides testify mocks for the auth package
// interfaces. Constructors register the mock with the test and assert
// expectations on cleanup.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/staffhub/staffhub/internal/auth"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockEmployeeRepository is a mock of auth.EmployeeRepository.
type MockEmployeeRepository struct {
	mock.Mock
}

var _ auth.EmployeeRepository = (*MockEmployeeRepository)(nil)

// NewMockEmployeeRepository creates a new mock bound to t.
func NewMockEmployeeRepository(t testingT) *MockEmployeeRepository {
	m := &MockEmployeeRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEmployeeRepository) Create(ctx context.Context, emp *auth.Employee) error {
	args := m.Called(ctx, emp)
	return args.Error(0)
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, employeeID string) (*auth.Employee, error) {
	args := m.Called(ctx, employeeID)
	if emp, ok := args.Get(0).(*auth.Employee); ok {
		return emp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeRepository) GetByLogin(ctx context.Context, employeeID, officialEmail string) (*auth.Employee, error) {
	args := m.Called(ctx, employeeID, officialEmail)
	if emp, ok := args.Get(0).(*auth.Employee); ok {
		return emp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeRepository) List(ctx context.Context) ([]*auth.Employee, error) {
	args := m.Called(ctx)
	if emps, ok := args.Get(0).([]*auth.Employee); ok {
		return emps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, emp *auth.Employee) error {
	args := m.Called(ctx, emp)
	return args.Error(0)
}

func (m *MockEmployeeRepository) UpdatePassword(ctx context.Context, employeeID, passwordHash string) error {
	args := m.Called(ctx, employeeID, passwordHash)
	return args.Error(0)
}

// MockSessionRepository is a mock of auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

var _ auth.SessionRepository = (*MockSessionRepository)(nil)

// NewMockSessionRepository creates a new mock bound to t.
func NewMockSessionRepository(t testingT) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	args := m.Called(ctx, tokenHash)
	if session, ok := args.Get(0).(*auth.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	args := m.Called(ctx, id, lastSeen)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	args := m.Called(ctx, employeeID)
	return args.Error(0)
}

// MockPasswordResetRepository is a mock of auth.PasswordResetRepository.
type MockPasswordResetRepository struct {
	mock.Mock
}

var _ auth.PasswordResetRepository = (*MockPasswordResetRepository)(nil)

// NewMockPasswordResetRepository creates a new mock bound to t.
func NewMockPasswordResetRepository(t testingT) *MockPasswordResetRepository {
	m := &MockPasswordResetRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, reset *auth.PasswordReset) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *MockPasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.PasswordReset, error) {
	args := m.Called(ctx, tokenHash)
	if reset, ok := args.Get(0).(*auth.PasswordReset); ok {
		return reset, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResetRepository) ConsumeByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordResetRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher is a mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// NewMockPasswordHasher creates a new mock bound to t.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// MockResetMailer is a mock of auth.ResetMailer.
type MockResetMailer struct {
	mock.Mock
}

var _ auth.ResetMailer = (*MockResetMailer)(nil)

// NewMockResetMailer creates a new mock bound to t.
func NewMockResetMailer(t testingT) *MockResetMailer {
	m := &MockResetMailer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockResetMailer) SendResetLink(ctx context.Context, toEmail, link string, ttl time.Duration) error {
	args := m.Called(ctx, toEmail, link, ttl)
	return args.Error(0)
}
