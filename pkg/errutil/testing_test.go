// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/staffhub/staffhub/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	// Should not fail
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("employee_id", "EMP-001").Errorf("test error")
	// Should not fail
	errutil.AssertErrorContext(t, err, "employee_id", "EMP-001")
}
