// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

// Package auth provides the identity core of the StaffHub portal:
// credential verification, web sessions, and password recovery.
//
// # Domain Types
//
// Domain types (Employee, Session, PasswordReset) should be created
// using their respective constructors:
//   - NewEmployee - creates an Employee with normalized identifiers
//   - NewSession - creates a Session bound to an employee and token hash
//   - NewPasswordReset - creates a PasswordReset with an expiry instant
//
// Direct struct initialization bypasses normalization and may create
// invalid state. Repository implementations receive pre-validated types
// from these constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - login, whoami, logout
//   - PasswordResetService - reset request and confirmation flow
//
// Both services take their clock as a dependency so expiry behavior is
// testable with simulated time.
package auth
