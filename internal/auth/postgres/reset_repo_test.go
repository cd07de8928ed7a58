// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/auth"
	"github.com/staffhub/staffhub/pkg/errutil"
)

var resetColumns = []string{"id", "employee_id", "token_hash", "expires_at", "created_at"}

func testStoredReset(t *testing.T) *auth.PasswordReset {
	t.Helper()
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	reset, err := auth.NewPasswordReset("EMP-001", "tokenhash", created, created.Add(2*time.Minute))
	require.NoError(t, err)
	return reset
}

func TestPasswordResetRepository_Create(t *testing.T) {
	reset := testStoredReset(t)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO password_resets`).
					WithArgs(reset.ID.String(), reset.EmployeeID, reset.TokenHash,
						reset.ExpiresAt, reset.CreatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO password_resets`).
					WithArgs(reset.ID.String(), reset.EmployeeID, reset.TokenHash,
						reset.ExpiresAt, reset.CreatedAt).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewPasswordResetRepository(mock)
			err = repo.Create(context.Background(), reset)

			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "RESET_CREATE_FAILED")
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPasswordResetRepository_GetByTokenHash(t *testing.T) {
	reset := testStoredReset(t)

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		rows := pgxmock.NewRows(resetColumns).
			AddRow(reset.ID.String(), reset.EmployeeID, reset.TokenHash,
				reset.ExpiresAt, reset.CreatedAt)
		mock.ExpectQuery(`SELECT .+ FROM password_resets`).
			WithArgs("tokenhash").
			WillReturnRows(rows)

		repo := NewPasswordResetRepository(mock)
		got, err := repo.GetByTokenHash(context.Background(), "tokenhash")
		require.NoError(t, err)
		assert.Equal(t, reset.ID, got.ID)
		assert.Equal(t, reset.ExpiresAt, got.ExpiresAt)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM password_resets`).
			WithArgs("ghosthash").
			WillReturnRows(pgxmock.NewRows(resetColumns))

		repo := NewPasswordResetRepository(mock)
		_, err = repo.GetByTokenHash(context.Background(), "ghosthash")
		require.ErrorIs(t, err, auth.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestPasswordResetRepository_ConsumeByTokenHash(t *testing.T) {
	t.Run("winner consumes the row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM password_resets WHERE token_hash = \$1`).
			WithArgs("tokenhash").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewPasswordResetRepository(mock)
		consumed, err := repo.ConsumeByTokenHash(context.Background(), "tokenhash")
		require.NoError(t, err)
		assert.True(t, consumed)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("loser sees the row already gone", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM password_resets WHERE token_hash = \$1`).
			WithArgs("tokenhash").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewPasswordResetRepository(mock)
		consumed, err := repo.ConsumeByTokenHash(context.Background(), "tokenhash")
		require.NoError(t, err)
		assert.False(t, consumed)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM password_resets WHERE token_hash = \$1`).
			WithArgs("tokenhash").
			WillReturnError(errors.New("connection lost"))

		repo := NewPasswordResetRepository(mock)
		_, err = repo.ConsumeByTokenHash(context.Background(), "tokenhash")
		errutil.AssertErrorCode(t, err, "RESET_CONSUME_FAILED")

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestPasswordResetRepository_DeleteExpired(t *testing.T) {
	cutoff := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("reports deleted count", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM password_resets WHERE expires_at < \$1`).
			WithArgs(cutoff).
			WillReturnResult(pgxmock.NewResult("DELETE", 5))

		repo := NewPasswordResetRepository(mock)
		n, err := repo.DeleteExpired(context.Background(), cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("nothing expired", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM password_resets WHERE expires_at < \$1`).
			WithArgs(cutoff).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewPasswordResetRepository(mock)
		n, err := repo.DeleteExpired(context.Background(), cutoff)
		require.NoError(t, err)
		assert.Zero(t, n)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}
