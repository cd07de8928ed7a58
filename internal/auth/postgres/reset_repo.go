// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/staffhub/staffhub/internal/auth"
)

// PasswordResetRepository implements auth.PasswordResetRepository using PostgreSQL.
type PasswordResetRepository struct {
	pool poolIface
}

// NewPasswordResetRepository creates a new PasswordResetRepository.
func NewPasswordResetRepository(pool poolIface) *PasswordResetRepository {
	return &PasswordResetRepository{pool: pool}
}

// Create stores a new password reset entry.
func (r *PasswordResetRepository) Create(ctx context.Context, reset *auth.PasswordReset) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_resets (id, employee_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, reset.ID.String(), reset.EmployeeID, reset.TokenHash, reset.ExpiresAt, reset.CreatedAt)
	if err != nil {
		return oops.Code("RESET_CREATE_FAILED").
			With("operation", "insert password_reset").
			With("employee_id", reset.EmployeeID).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a reset entry by its token hash.
func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.PasswordReset, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, employee_id, token_hash, expires_at, created_at
		FROM password_resets
		WHERE token_hash = $1
	`, tokenHash)

	reset, err := r.scanReset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("RESET_GET_BY_TOKEN_FAILED").
			With("operation", "get reset by token hash").
			Wrap(err)
	}
	return reset, nil
}

// ConsumeByTokenHash deletes the entry for a token hash and reports
// whether a row was deleted. The single DELETE is the atomicity point:
// of two racing redemptions only one sees RowsAffected() == 1.
func (r *PasswordResetRepository) ConsumeByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM password_resets WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		return false, oops.Code("RESET_CONSUME_FAILED").
			With("operation", "consume password_reset").
			Wrap(err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteExpired removes entries that expired before the cutoff and
// returns the count.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM password_resets WHERE expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, oops.Code("RESET_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired password_resets").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanReset scans a single row into a PasswordReset.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *PasswordResetRepository) scanReset(row pgx.Row) (*auth.PasswordReset, error) {
	var (
		idStr      string
		employeeID string
		tokenHash  string
		expiresAt  time.Time
		createdAt  time.Time
	)

	err := row.Scan(&idStr, &employeeID, &tokenHash, &expiresAt, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("RESET_SCAN_FAILED").
			With("operation", "scan password_reset").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("RESET_INVALID_ID").
			With("operation", "parse reset id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.PasswordReset{
		ID:         id,
		EmployeeID: employeeID,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.PasswordResetRepository = (*PasswordResetRepository)(nil)
