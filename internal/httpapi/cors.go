// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package httpapi

import (
	"net/http"
	"slices"
	"strings"
)

// corsHeaders advertised to allow-listed origins.
const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Accept, Authorization, X-Requested-With"
	corsMaxAge       = "86400"
)

// CORSMiddleware gates cross-origin access to the /api namespace.
// Non-/api paths pass through untouched.
//
// For an allow-listed Origin the exact origin is echoed back with
// credentials enabled; a preflight OPTIONS short-circuits with 204.
// A disallowed origin is refused with a plain-text 403 unless the
// request is a GET, which passes through without CORS headers: the
// browser will block the read, and same-origin tooling (curl, health
// checks sending an Origin) keeps working. Requests without an Origin
// header are not cross-origin and pass through.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api") {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if slices.Contains(allowedOrigins, origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			if r.Method != http.MethodGet {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusForbidden)
				//nolint:errcheck // refusal body write failure leaves a bare 403
				w.Write([]byte("CORS Forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
