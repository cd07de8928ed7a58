// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/samber/oops"
)

// ResetMailer delivers a password reset link to an employee. The
// plaintext token appears only inside the link; it is never persisted.
type ResetMailer interface {
	SendResetLink(ctx context.Context, toEmail, link string, ttl time.Duration) error
}

// ResetConfig tunes the reset flow. Zero values fall back to defaults.
type ResetConfig struct {
	// TokenTTL is the validity window of an issued token.
	TokenTTL time.Duration

	// MinPasswordLen is the minimum accepted new-password length.
	MinPasswordLen int

	// FrontendURL is the portal base URL the reset link points into,
	// e.g. "https://portal.example.com".
	FrontendURL string
}

// ResetOption configures a ResetService.
type ResetOption func(*ResetService)

// WithResetLogger sets the service logger.
func WithResetLogger(logger *slog.Logger) ResetOption {
	return func(s *ResetService) { s.logger = logger }
}

// WithResetClock sets the time source, for expiry-sensitive tests.
func WithResetClock(now func() time.Time) ResetOption {
	return func(s *ResetService) { s.now = now }
}

// ResetService implements the password recovery flow: issue a
// short-lived single-use token by mail, then redeem it for a new
// password. Redemption consumes the token and signs the caller in.
type ResetService struct {
	employees EmployeeRepository
	resets    PasswordResetRepository
	sessions  SessionRepository
	hasher    PasswordHasher
	mailer    ResetMailer
	cfg       ResetConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewResetService creates a new ResetService.
func NewResetService(
	employees EmployeeRepository,
	resets PasswordResetRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	mailer ResetMailer,
	cfg ResetConfig,
	opts ...ResetOption,
) (*ResetService, error) {
	if employees == nil {
		return nil, oops.Errorf("employees repository is required")
	}
	if resets == nil {
		return nil, oops.Errorf("resets repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if mailer == nil {
		return nil, oops.Errorf("reset mailer is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultResetTokenTTL
	}
	if cfg.MinPasswordLen <= 0 {
		cfg.MinPasswordLen = DefaultMinPasswordLen
	}

	s := &ResetService{
		employees: employees,
		resets:    resets,
		sessions:  sessions,
		hasher:    hasher,
		mailer:    mailer,
		cfg:       cfg,
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

// RequestReset issues a reset token for the employee identified by the
// (employee_id, official_email) pair and mails the reset link.
//
// An unknown pair is reported as ACCOUNT_NOT_FOUND. This confirms
// account existence to the caller; the portal serves a closed company
// directory, so the support cost of a silent success outweighs the
// enumeration risk here.
//
// Issuing a token does not touch other outstanding tokens for the same
// employee. Each lives and dies on its own expiry or consumption.
func (s *ResetService) RequestReset(ctx context.Context, employeeID, officialEmail string) error {
	if employeeID == "" || officialEmail == "" {
		return oops.Code(CodeValidationFailed).Errorf("missing required fields")
	}

	employeeID = NormalizeEmployeeID(employeeID)
	officialEmail = NormalizeEmail(officialEmail)

	emp, err := s.employees.GetByLogin(ctx, employeeID, officialEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeAccountNotFound).Errorf("employee not found")
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get employee by login pair").
			Wrap(err)
	}

	token, tokenHash, err := GenerateResetToken()
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	now := s.now()
	reset, err := NewPasswordReset(emp.EmployeeID, tokenHash, now, now.Add(s.cfg.TokenTTL))
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "build reset entry").
			Wrap(err)
	}

	if err := s.resets.Create(ctx, reset); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "persist reset entry").
			Wrap(err)
	}

	link := s.resetLink(token)
	if err := s.mailer.SendResetLink(ctx, emp.OfficialEmail, link, s.cfg.TokenTTL); err != nil {
		// The row stays behind; it expires on its own.
		return oops.Code("RESET_DELIVERY_FAILED").
			With("employee_id", emp.EmployeeID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "reset token issued",
		"employee_id", emp.EmployeeID,
		"expires_at", reset.ExpiresAt,
	)
	return nil
}

// ConfirmResetInput carries a redemption attempt. EmployeeID and
// OfficialEmail must match the identity the token was issued for; the
// token alone is not enough.
type ConfirmResetInput struct {
	Token         string
	EmployeeID    string
	OfficialEmail string
	NewPassword   string
	UserAgent     string
	IPAddress     string
}

// ConfirmReset redeems a token: validates it, writes the new password,
// consumes the token, and signs the employee in on a fresh session.
// All other sessions for the employee are destroyed.
//
// Consumption runs after the password write. If the write fails the
// token survives for another attempt; if two redemptions race, both
// may write a password but only the one that wins the consuming delete
// returns success.
func (s *ResetService) ConfirmReset(ctx context.Context, in ConfirmResetInput) (Profile, *Session, string, error) {
	if in.Token == "" || in.EmployeeID == "" || in.OfficialEmail == "" || in.NewPassword == "" {
		return Profile{}, nil, "", oops.Code(CodeValidationFailed).Errorf("missing required fields")
	}
	if len(in.NewPassword) < s.cfg.MinPasswordLen {
		return Profile{}, nil, "", oops.Code(CodeValidationFailed).
			With("min", s.cfg.MinPasswordLen).
			Errorf("password must be at least %d characters", s.cfg.MinPasswordLen)
	}

	tokenHash := HashResetToken(in.Token)
	reset, err := s.resets.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, nil, "", oops.Code(CodeResetTokenInvalid).Errorf("invalid reset token")
		}
		return Profile{}, nil, "", oops.Code("RESET_CONFIRM_FAILED").
			With("operation", "get reset by token hash").
			Wrap(err)
	}

	if reset.IsExpiredAt(s.now()) {
		// Left for DeleteExpired; no point racing the sweeper here.
		return Profile{}, nil, "", oops.Code(CodeResetTokenExpired).Errorf("reset token expired")
	}

	emp, err := s.employees.GetByID(ctx, reset.EmployeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, nil, "", oops.Code(CodeResetTokenInvalid).Errorf("invalid reset token")
		}
		return Profile{}, nil, "", oops.Code("RESET_CONFIRM_FAILED").
			With("operation", "get employee by id").
			Wrap(err)
	}

	// The token hash names an identity; the caller must present the
	// same identity alongside it.
	if NormalizeEmployeeID(in.EmployeeID) != emp.EmployeeID ||
		NormalizeEmail(in.OfficialEmail) != emp.OfficialEmail {
		s.logger.WarnContext(ctx, "reset identity mismatch", "employee_id", reset.EmployeeID)
		return Profile{}, nil, "", oops.Code(CodeResetTokenInvalid).Errorf("invalid reset token")
	}

	newHash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return Profile{}, nil, "", oops.Code("RESET_CONFIRM_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.employees.UpdatePassword(ctx, emp.EmployeeID, newHash); err != nil {
		return Profile{}, nil, "", oops.Code("RESET_CONFIRM_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	consumed, err := s.resets.ConsumeByTokenHash(ctx, tokenHash)
	if err != nil {
		return Profile{}, nil, "", oops.Code("RESET_CONFIRM_FAILED").
			With("operation", "consume reset token").
			Wrap(err)
	}
	if !consumed {
		// A concurrent redemption got here first.
		return Profile{}, nil, "", oops.Code(CodeResetTokenInvalid).Errorf("invalid reset token")
	}

	// Password changed: every existing session for this employee is
	// now stale.
	if err := s.sessions.DeleteByEmployee(ctx, emp.EmployeeID); err != nil {
		s.logger.WarnContext(ctx, "stale session cleanup failed",
			"employee_id", emp.EmployeeID, "error", err)
	}

	token, sessTokenHash, err := GenerateSessionToken()
	if err != nil {
		return Profile{}, nil, "", oops.Code("RESET_CONFIRM_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}
	session, err := NewSession(emp.EmployeeID, sessTokenHash, in.UserAgent, in.IPAddress, s.now())
	if err != nil {
		return Profile{}, nil, "", oops.Code("RESET_CONFIRM_FAILED").
			With("operation", "create session").
			Wrap(err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return Profile{}, nil, "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset completed", "employee_id", emp.EmployeeID)
	return emp.Profile(), session, token, nil
}

// SweepExpired deletes reset entries that expired before now. Called
// periodically from the server loop; correctness never depends on it.
func (s *ResetService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.resets.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, oops.Code("RESET_SWEEP_FAILED").Wrap(err)
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "expired reset tokens swept", "count", n)
	}
	return n, nil
}

func (s *ResetService) resetLink(token string) string {
	base := s.cfg.FrontendURL
	if base == "" {
		base = "http://localhost:5173"
	}
	return fmt.Sprintf("%s/reset-password?token=%s", base, url.QueryEscape(token))
}
