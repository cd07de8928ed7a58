// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffHub Contributors

package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err, "should read embedded migrations directory")

	// Three migrations, each with up and down.
	assert.GreaterOrEqual(t, len(entries), 6, "should have at least 6 migration files (3 up + 3 down)")

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}

	expectedFiles := []string{
		"000001_employees.up.sql",
		"000001_employees.down.sql",
		"000002_sessions.up.sql",
		"000002_sessions.down.sql",
		"000003_password_resets.up.sql",
		"000003_password_resets.down.sql",
	}
	for _, expected := range expectedFiles {
		assert.True(t, fileNames[expected], "should contain %s", expected)
	}

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	for _, entry := range entries {
		assert.True(t, pattern.MatchString(entry.Name()),
			"file %s should match pattern NNNNNN_name.(up|down).sql", entry.Name())
	}
}
