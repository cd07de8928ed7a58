// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Error codes attached to oops errors by this package. The HTTP layer
// maps codes to status lines; nothing below the API boundary knows
// about HTTP.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodePasswordUnset      = "AUTH_PASSWORD_UNSET"
	CodeUnauthorized       = "AUTH_UNAUTHORIZED"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	CodeResetTokenExpired  = "RESET_TOKEN_EXPIRED"
	CodeEmployeeConflict   = "EMPLOYEE_CONFLICT"
)
