// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

// Package mail delivers transactional mail for the portal. Two senders
// exist: SMTP for real deployments and a log sender for development,
// where the reset link lands in the server log instead of an inbox.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/staffhub/staffhub/internal/auth"
)

// SMTPConfig holds SMTP relay settings. Username may be empty for
// relays that accept unauthenticated mail from inside the network.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, oops.Errorf("smtp host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		return nil, oops.Errorf("smtp from address is required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// SendResetLink mails the password reset link to the employee.
func (s *SMTPSender) SendResetLink(_ context.Context, toEmail, link string, ttl time.Duration) error {
	subject := "StaffHub password reset"
	body := fmt.Sprintf(
		"A password reset was requested for your StaffHub account.\r\n\r\n"+
			"Reset your password here: %s\r\n\r\n"+
			"The link is valid for %s. If you did not request this, you can ignore this mail.\r\n",
		link, formatTTL(ttl),
	)

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + toEmail,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var a smtp.Auth
	if s.cfg.Username != "" {
		a = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, a, s.cfg.From, []string{toEmail}, []byte(msg)); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("smtp_host", s.cfg.Host).
			Wrap(err)
	}
	return nil
}

// LogSender writes the reset link to the log instead of sending mail.
// Development use only; the link grants a password change.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// SendResetLink logs the reset link.
func (s *LogSender) SendResetLink(ctx context.Context, toEmail, link string, ttl time.Duration) error {
	s.logger.InfoContext(ctx, "password reset link (mail delivery disabled)",
		"to", toEmail,
		"link", link,
		"valid_for", formatTTL(ttl),
	)
	return nil
}

func formatTTL(ttl time.Duration) string {
	if ttl <= 0 {
		ttl = auth.DefaultResetTokenTTL
	}
	return ttl.String()
}

// Compile-time interface checks.
var (
	_ auth.ResetMailer = (*SMTPSender)(nil)
	_ auth.ResetMailer = (*LogSender)(nil)
)
