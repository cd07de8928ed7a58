// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/staffhub/staffhub/internal/auth"
	"github.com/staffhub/staffhub/pkg/errutil"
)

// errorBody is the JSON error envelope the frontend expects.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status. Encode failures are
// logged; headers are already gone at that point.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// statusForCode maps service error codes to HTTP statuses. Codes not
// listed are treated as internal errors.
func statusForCode(code string) int {
	switch code {
	case auth.CodeValidationFailed:
		return http.StatusBadRequest
	case auth.CodeInvalidCredentials, auth.CodePasswordUnset,
		auth.CodeUnauthorized, auth.CodeSessionNotFound:
		return http.StatusUnauthorized
	case auth.CodeAccountNotFound:
		return http.StatusNotFound
	case auth.CodeResetTokenInvalid, auth.CodeResetTokenExpired:
		return http.StatusBadRequest
	case auth.CodeEmployeeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the caller-visible message for an error.
// Validation errors pass their message through; everything else uses a
// fixed string per code so internal detail never leaks.
func publicMessage(code string, err error) string {
	switch code {
	case auth.CodeValidationFailed:
		if oopsErr, ok := oops.AsOops(err); ok {
			return oopsErr.Error()
		}
		return "Invalid request"
	case auth.CodeInvalidCredentials:
		return "Invalid credentials"
	case auth.CodePasswordUnset:
		return "No password set, use password recovery"
	case auth.CodeUnauthorized:
		return "Unauthorized"
	case auth.CodeSessionNotFound:
		return "No active session found"
	case auth.CodeAccountNotFound:
		return "Employee not found"
	case auth.CodeResetTokenInvalid, auth.CodeResetTokenExpired:
		return "Invalid or expired token"
	case auth.CodeEmployeeConflict:
		return "Employee ID or email already in use"
	default:
		return "Internal server error"
	}
}

// writeError maps a service error onto the wire. Internal errors are
// logged with full context; the client sees only the opaque message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errutil.Code(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		errutil.LogError(h.logger, "request failed", err)
	} else {
		h.logger.DebugContext(r.Context(), "request rejected",
			"code", code, "status", status, "path", r.URL.Path)
	}
	writeJSON(w, status, errorBody{Error: publicMessage(code, err)})
}

// decodeJSON parses the request body into dst, limiting body size to
// keep a hostile client from buffering unbounded input.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return oops.Code(auth.CodeValidationFailed).Wrapf(err, "malformed JSON body")
	}
	return nil
}
