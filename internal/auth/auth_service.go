// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when no employee matches the login pair to
// prevent timing attacks. We still run password verification to make
// response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the time source, for expiry-sensitive tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service provides login, whoami, and logout. Each browser context
// starts Anonymous; Login moves it to Authenticated, Logout back.
type Service struct {
	employees EmployeeRepository
	sessions  SessionRepository
	hasher    PasswordHasher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(employees EmployeeRepository, sessions SessionRepository, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if employees == nil {
		return nil, oops.Errorf("employees repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}

	s := &Service{
		employees: employees,
		sessions:  sessions,
		hasher:    hasher,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Errorf("logger cannot be nil")
	}
	if s.now == nil {
		return nil, oops.Errorf("clock cannot be nil")
	}
	return s, nil
}

// LoginInput carries the credentials presented by the caller.
// PriorToken is the session token from the request cookie, if any; the
// session it names is destroyed before a new one is written so no
// session state survives a re-login.
type LoginInput struct {
	EmployeeID    string
	OfficialEmail string
	Password      string
	PriorToken    string
	UserAgent     string
	IPAddress     string
}

// Login authenticates an employee and creates a session.
// Returns the public profile, the session, and the plaintext token.
//
// Rejections deliberately collapse "unknown employee ID", "wrong
// email", and "wrong password" into one uniform invalid-credentials
// error; the precise reason is logged server-side only. The one
// caller-visible distinction is AUTH_PASSWORD_UNSET, which directs a
// provisioned-but-passwordless account to recovery.
func (s *Service) Login(ctx context.Context, in LoginInput) (Profile, *Session, string, error) {
	if in.EmployeeID == "" || in.OfficialEmail == "" || in.Password == "" {
		return Profile{}, nil, "", oops.Code(CodeValidationFailed).Errorf("missing required fields")
	}

	employeeID := NormalizeEmployeeID(in.EmployeeID)
	email := NormalizeEmail(in.OfficialEmail)

	emp, lookupErr := s.employees.GetByLogin(ctx, employeeID, email)

	// Determine which hash to verify against (real or dummy for timing
	// attack prevention). Verification always runs.
	targetHash := dummyPasswordHash
	exists := false
	unset := false

	switch {
	case lookupErr == nil:
		if emp.Credential.IsSet() {
			targetHash = emp.Credential.Hash()
		} else {
			unset = true
		}
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// keep the dummy hash
	default:
		return Profile{}, nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get employee by login pair").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(in.Password, targetHash)
	if verifyErr != nil && exists && !unset {
		// Corrupt stored hash: an operator problem, never "wrong password".
		return Profile{}, nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("employee_id", employeeID).
			Wrap(verifyErr)
	}

	if exists && unset {
		return Profile{}, nil, "", oops.Code(CodePasswordUnset).
			Errorf("no password set, use password recovery")
	}

	if !exists || !valid {
		s.logger.InfoContext(ctx, "login rejected",
			"employee_id", employeeID,
			"pair_matched", exists,
		)
		return Profile{}, nil, "", oops.Code(CodeInvalidCredentials).Errorf("invalid credentials")
	}

	// Transparent upgrade of legacy bcrypt hashes. Login succeeds even
	// if the rewrite fails.
	if s.hasher.NeedsUpgrade(emp.Credential.Hash()) {
		if newHash, hashErr := s.hasher.Hash(in.Password); hashErr == nil {
			if err := s.employees.UpdatePassword(ctx, emp.EmployeeID, newHash); err != nil {
				s.logger.WarnContext(ctx, "password hash upgrade failed",
					"employee_id", emp.EmployeeID, "error", err)
			}
		}
	}

	// Clear-then-set: discard whatever session the cookie named before
	// writing the new one, so no state carries across logins.
	if in.PriorToken != "" {
		if err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(in.PriorToken)); err != nil {
			s.logger.WarnContext(ctx, "prior session cleanup failed", "error", err)
		}
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return Profile{}, nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(emp.EmployeeID, tokenHash, in.UserAgent, in.IPAddress, s.now())
	if err != nil {
		return Profile{}, nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return Profile{}, nil, "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "employee_id", emp.EmployeeID)
	return emp.Profile(), session, token, nil
}

// WhoAmI resolves the session token to the current public profile.
// The profile is looked up fresh from the directory on every call so
// profile edits are visible immediately; nothing is cached in the
// session row. An absent session is AUTH_UNAUTHORIZED, not a failure.
func (s *Service) WhoAmI(ctx context.Context, token string) (Profile, error) {
	if token == "" {
		return Profile{}, oops.Code(CodeUnauthorized).Errorf("unauthorized")
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, oops.Code(CodeUnauthorized).Errorf("unauthorized")
		}
		return Profile{}, oops.Code("SESSION_READ_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	emp, err := s.employees.GetByID(ctx, session.EmployeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Identity deleted out from under a live session.
			return Profile{}, oops.Code(CodeUnauthorized).
				With("employee_id", session.EmployeeID).
				Errorf("unauthorized")
		}
		return Profile{}, oops.Code("AUTH_WHOAMI_FAILED").
			With("operation", "get employee by id").
			Wrap(err)
	}

	// Best effort, identity resolution succeeds regardless.
	_ = s.sessions.UpdateLastSeen(ctx, session.ID, s.now()) //nolint:errcheck

	return emp.Profile(), nil
}

// Logout destroys the caller's session and returns the employee ID
// that was logged out, for audit logging.
func (s *Service) Logout(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", oops.Code(CodeSessionNotFound).Errorf("no active session found")
	}

	tokenHash := HashSessionToken(token)
	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code(CodeSessionNotFound).Errorf("no active session found")
		}
		return "", oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		return "", oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "logout", "employee_id", session.EmployeeID)
	return session.EmployeeID, nil
}
