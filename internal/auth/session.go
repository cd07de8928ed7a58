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

// SessionTokenBytes is the entropy of a session token (64 hex chars).
const SessionTokenBytes = 32

// Session binds an opaque browser token to an employee. Sessions have
// no built-in expiry; they live until explicit logout. LastSeenAt is
// recorded so an idle timeout can be layered on without a schema
// change.
type Session struct {
	ID         ulid.ULID
	EmployeeID string
	TokenHash  string
	UserAgent  string
	IPAddress  string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// NewSession creates a validated Session instance.
// UserAgent and IPAddress are optional and may be empty.
func NewSession(employeeID, tokenHash, userAgent, ipAddress string, now time.Time) (*Session, error) {
	if employeeID == "" {
		return nil, oops.Code("SESSION_INVALID_EMPLOYEE").Errorf("employee ID cannot be empty")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}

	return &Session{
		ID:         ulid.Make(),
		EmployeeID: employeeID,
		TokenHash:  tokenHash,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token travels in the cookie; only the hash is stored.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages session persistence. Tokens are exclusive
// to one browser context, so no locking beyond the database's row
// atomicity is needed.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	// Returns ErrNotFound for unknown hashes; callers treat that as
	// anonymous, not as a failure.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// DeleteByTokenHash removes the session bound to a token hash.
	// Deleting an absent session is a success, not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByEmployee removes all sessions for an employee.
	DeleteByEmployee(ctx context.Context, employeeID string) error
}
