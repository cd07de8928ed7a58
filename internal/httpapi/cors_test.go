// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsHandler(t *testing.T, allowed []string) (http.Handler, *bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return CORSMiddleware(allowed)(next), &reached
}

func TestCORSMiddleware(t *testing.T) {
	allowed := []string{"http://localhost:5173"}

	t.Run("allowed origin gets CORS headers", func(t *testing.T) {
		handler, reached := corsHandler(t, allowed)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/login", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.True(t, *reached)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Accept, Authorization, X-Requested-With", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("preflight short-circuits with 204", func(t *testing.T) {
		handler, reached := corsHandler(t, allowed)

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/employees/login", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.False(t, *reached)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin with non-GET is refused", func(t *testing.T) {
		handler, reached := corsHandler(t, allowed)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/login", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.False(t, *reached)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "CORS Forbidden", rec.Body.String())
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin with GET passes without CORS headers", func(t *testing.T) {
		handler, reached := corsHandler(t, allowed)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/me", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.True(t, *reached)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("absent origin passes through", func(t *testing.T) {
		handler, reached := corsHandler(t, allowed)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/login", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.True(t, *reached)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("non-api path is untouched", func(t *testing.T) {
		handler, reached := corsHandler(t, allowed)

		req := httptest.NewRequest(http.MethodPost, "/healthz/liveness", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.True(t, *reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("multiple allowed origins", func(t *testing.T) {
		handler, _ := corsHandler(t, []string{"http://localhost:5173", "https://portal.example.com"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/login", nil)
		req.Header.Set("Origin", "https://portal.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://portal.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
