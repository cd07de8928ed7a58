// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes       = 32              // 32 bytes = 64 hex chars
	DefaultResetTokenTTL  = 2 * time.Minute // matches the reset-link mail copy
	DefaultMinPasswordLen = 8
)

// PasswordReset is one entry in the reset ledger. Entries are never
// flagged as used; consumption deletes the row, so "unused", "expired"
// and "used" can never be confused.
type PasswordReset struct {
	ID         ulid.ULID
	EmployeeID string
	TokenHash  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// NewPasswordReset creates a validated PasswordReset instance.
func NewPasswordReset(employeeID, tokenHash string, createdAt, expiresAt time.Time) (*PasswordReset, error) {
	if employeeID == "" {
		return nil, oops.Code("RESET_INVALID_EMPLOYEE").Errorf("employee ID cannot be empty")
	}
	if tokenHash == "" {
		return nil, oops.Code("RESET_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if !expiresAt.After(createdAt) {
		return nil, oops.Code("RESET_INVALID_EXPIRY").Errorf("expiry must be after creation")
	}

	return &PasswordReset{
		ID:         ulid.Make(),
		EmployeeID: employeeID,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  createdAt,
	}, nil
}

// IsExpiredAt reports whether the token is expired at the given
// instant. Expiry is evaluated at redemption time, never swept
// proactively, so a delayed request fails safely.
func (r *PasswordReset) IsExpiredAt(t time.Time) bool {
	return !r.ExpiresAt.After(t)
}

// GenerateResetToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is mailed to the user; only the hash is stored.
func GenerateResetToken() (token, hash string, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashResetToken(token)

	return token, hash, nil
}

// HashResetToken computes the SHA256 hash of a reset token.
func HashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// PasswordResetRepository manages the reset ledger. Issuing a token
// never invalidates other outstanding tokens for the same employee;
// each is independently valid until its own expiry or consumption.
type PasswordResetRepository interface {
	// Create appends a new reset entry.
	Create(ctx context.Context, reset *PasswordReset) error

	// GetByTokenHash retrieves a reset entry by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error)

	// ConsumeByTokenHash atomically deletes the entry for a token hash
	// and reports whether a row was deleted. Under two concurrent
	// redemptions exactly one caller sees true; the database's
	// delete-returning semantics close the double-redemption window.
	ConsumeByTokenHash(ctx context.Context, tokenHash string) (bool, error)

	// DeleteExpired removes entries that expired before the cutoff.
	// Storage hygiene only; correctness never depends on it running.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
