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

var sessionColumns = []string{
	"id", "employee_id", "token_hash", "user_agent", "ip_address", "created_at", "last_seen_at",
}

func testStoredSession(t *testing.T) *auth.Session {
	t.Helper()
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	session, err := auth.NewSession("EMP-001", "tokenhash", "Mozilla/5.0", "10.0.0.1", now)
	require.NoError(t, err)
	return session
}

func TestSessionRepository_Create(t *testing.T) {
	session := testStoredSession(t)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO sessions`).
					WithArgs(session.ID.String(), session.EmployeeID, session.TokenHash,
						session.UserAgent, session.IPAddress, session.CreatedAt, session.LastSeenAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO sessions`).
					WithArgs(session.ID.String(), session.EmployeeID, session.TokenHash,
						session.UserAgent, session.IPAddress, session.CreatedAt, session.LastSeenAt).
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

			repo := NewSessionRepository(mock)
			err = repo.Create(context.Background(), session)

			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "SESSION_CREATE_FAILED")
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	session := testStoredSession(t)

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		rows := pgxmock.NewRows(sessionColumns).
			AddRow(session.ID.String(), session.EmployeeID, session.TokenHash,
				session.UserAgent, session.IPAddress, session.CreatedAt, session.LastSeenAt)
		mock.ExpectQuery(`SELECT .+ FROM sessions`).
			WithArgs("tokenhash").
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		got, err := repo.GetByTokenHash(context.Background(), "tokenhash")
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, "EMP-001", got.EmployeeID)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM sessions`).
			WithArgs("ghosthash").
			WillReturnRows(pgxmock.NewRows(sessionColumns))

		repo := NewSessionRepository(mock)
		_, err = repo.GetByTokenHash(context.Background(), "ghosthash")
		require.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, auth.CodeSessionNotFound)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("malformed session id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		rows := pgxmock.NewRows(sessionColumns).
			AddRow("not-a-ulid", session.EmployeeID, session.TokenHash,
				session.UserAgent, session.IPAddress, session.CreatedAt, session.LastSeenAt)
		mock.ExpectQuery(`SELECT .+ FROM sessions`).
			WithArgs("tokenhash").
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		_, err = repo.GetByTokenHash(context.Background(), "tokenhash")
		require.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestSessionRepository_UpdateLastSeen(t *testing.T) {
	session := testStoredSession(t)
	seen := session.LastSeenAt.Add(time.Minute)

	t.Run("successful update", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`UPDATE sessions SET last_seen_at`).
			WithArgs(session.ID.String(), seen).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewSessionRepository(mock)
		err = repo.UpdateLastSeen(context.Background(), session.ID, seen)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("absent session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`UPDATE sessions SET last_seen_at`).
			WithArgs(session.ID.String(), seen).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewSessionRepository(mock)
		err = repo.UpdateLastSeen(context.Background(), session.ID, seen)
		errutil.AssertErrorCode(t, err, auth.CodeSessionNotFound)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}

func TestSessionRepository_DeleteByTokenHash(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
	}{
		{
			name: "successful delete",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
					WithArgs("tokenhash").
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "delete absent session (no error)",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
					WithArgs("tokenhash").
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
					WithArgs("tokenhash").
					WillReturnError(errors.New("connection lost"))
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

			repo := NewSessionRepository(mock)
			err = repo.DeleteByTokenHash(context.Background(), "tokenhash")

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestSessionRepository_DeleteByEmployee(t *testing.T) {
	t.Run("removes all sessions for the employee", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE employee_id = \$1`).
			WithArgs("EMP-001").
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		repo := NewSessionRepository(mock)
		err = repo.DeleteByEmployee(context.Background(), "EMP-001")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("no sessions is a valid state", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions WHERE employee_id = \$1`).
			WithArgs("EMP-001").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewSessionRepository(mock)
		err = repo.DeleteByEmployee(context.Background(), "EMP-001")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}
