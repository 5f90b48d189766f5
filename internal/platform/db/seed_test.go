package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeedDataParses(t *testing.T) {
	data, err := ParseSeedData(defaultSeed)
	require.NoError(t, err)
	require.Len(t, data.LeaveTypes, 3)
	assert.Equal(t, "Casual Leave", data.LeaveTypes[0].Name)
	assert.Equal(t, 12, data.LeaveTypes[0].AllowedDays)
	assert.NotEmpty(t, data.Holidays)
}

func TestParseSeedDataRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown field", raw: "leaveTypes:\n  - name: A\n    allowedDays: 1\n    colour: red\n"},
		{name: "duplicate type", raw: "leaveTypes:\n  - name: Sick\n    allowedDays: 1\n  - name: sick\n    allowedDays: 2\n"},
		{name: "negative days", raw: "leaveTypes:\n  - name: Sick\n    allowedDays: -1\n"},
		{name: "bad holiday date", raw: "holidays:\n  - name: Party\n    date: 01/01/2026\n"},
		{name: "unnamed department", raw: "departments:\n  - name: \"\"\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSeedData([]byte(tc.raw))
			require.Error(t, err)
		})
	}
}

func TestLoadSeedDataPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	raw := "leaveTypes:\n  - name: Study Leave\n    allowedDays: 5\n    requiresApproval: false\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	data, err := LoadSeedData(path)
	require.NoError(t, err)
	require.Len(t, data.LeaveTypes, 1)
	require.NotNil(t, data.LeaveTypes[0].RequiresApproval)
	assert.False(t, *data.LeaveTypes[0].RequiresApproval)
}

func TestLoadSeedDataFallsBackToDefaults(t *testing.T) {
	data, err := LoadSeedData(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Len(t, data.LeaveTypes, 3)
}

func TestMigrationSourceFallsBackToEmbedded(t *testing.T) {
	source := MigrationSource(filepath.Join(t.TempDir(), "nope"))
	entries, err := readSQLNames(source)
	require.NoError(t, err)
	assert.Contains(t, entries, "0001_init.sql")
}
