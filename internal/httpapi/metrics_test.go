// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package httpapi

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/staffhub/staffhub/internal/auth"
	"github.com/staffhub/staffhub/internal/observability"
)

func TestRecordReset(t *testing.T) {
	h := &Handler{metrics: observability.NewMetrics(prometheus.NewRegistry())}

	h.recordReset(auth.CodeResetTokenExpired)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ResetsTotal.WithLabelValues("expired")))

	h.recordReset(auth.CodeResetTokenInvalid)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ResetsTotal.WithLabelValues("rejected")))

	// Bad input never touched the token ledger and stays out of the
	// stage counters.
	h.recordReset(auth.CodeValidationFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ResetsTotal.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ResetsTotal.WithLabelValues("rejected")))

	// A nil metrics handle is a no-op, not a panic.
	bare := &Handler{}
	bare.recordReset(auth.CodeResetTokenInvalid)
}

func TestRecordLogin(t *testing.T) {
	h := &Handler{metrics: observability.NewMetrics(prometheus.NewRegistry())}

	h.recordLogin("success")
	h.recordLogin(auth.CodeInvalidCredentials)
	h.recordLogin(auth.CodePasswordUnset)
	h.recordLogin(auth.CodeValidationFailed)
	h.recordLogin("SOMETHING_ELSE")

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginsTotal.WithLabelValues("invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginsTotal.WithLabelValues("password_unset")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginsTotal.WithLabelValues("validation_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.LoginsTotal.WithLabelValues("error")))
}
