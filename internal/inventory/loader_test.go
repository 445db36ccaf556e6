package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/pamforge/internal/logging"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_HeaderedInput(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "hostname,initial_admin_user,initial_admin_password\nh1,u1,p1\nh2,u2,p2\n")

	entries, err := Load(path, Options{}, logging.New(false, true))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "h1", entries[0].Hostname)
	assert.Equal(t, "u1", entries[0].Username)
	assert.Equal(t, "h2", entries[1].Hostname)

	pw, err := entries[0].Password.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "p1", pw)
}

func TestLoad_HeaderlessInput(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "h1,u1,p1\nh2,u2,p2\n")

	entries, err := Load(path, Options{NoHeader: true}, logging.New(false, true))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"h1", "h2"}, Hostnames(entries))
}

func TestLoad_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, " h1 , u1 , p1 \n")

	entries, err := Load(path, Options{NoHeader: true}, logging.New(false, true))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "h1", entries[0].Hostname)
	assert.Equal(t, "u1", entries[0].Username)

	pw, err := entries[0].Password.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "p1", pw)
}

func TestLoad_SkipsIncompleteRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
	}{
		{"missing password", "h1,u1,"},
		{"missing user", "h1,,p1"},
		{"missing hostname", ",u1,p1"},
		{"too few columns", "h1,u1"},
		{"blank fields", "  ,  ,  "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeCSV(t, tt.row+"\nok,admin,secret\n")

			entries, err := Load(path, Options{NoHeader: true}, logging.New(false, true))
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "ok", entries[0].Hostname)
		})
	}
}

func TestLoad_DuplicateHostnameFirstWins(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "h1,u1,p1\nh1,u2,p2\n")

	log := logging.New(false, true)
	logPath := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, log.AttachFile(logPath))

	entries, err := Load(path, Options{NoHeader: true}, log)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].Username)
	pw, err := entries[0].Password.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "p1", pw)

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Duplicate hostname h1")
}

func TestLoad_NeverLogsSecrets(t *testing.T) {
	t.Parallel()

	// The incomplete row carries a password that must not reach the log.
	path := writeCSV(t, "h1,,hunter2secret\nh2,u2,p2\n")

	log := logging.New(false, true)
	logPath := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, log.AttachFile(logPath))

	entries, err := Load(path, Options{NoHeader: true}, log)
	require.NoError(t, err)
	require.NoError(t, log.Close())
	require.Len(t, entries, 1)

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Row 1 incomplete")
	assert.NotContains(t, string(logged), "hunter2secret")
}

func TestLoad_MissingFileFatal(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{}, logging.New(false, true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file not found")
}

func TestLoad_PreservesFileOrder(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "zz,u,p\naa,u,p\nmm,u,p\n")

	entries, err := Load(path, Options{NoHeader: true}, logging.New(false, true))
	require.NoError(t, err)
	assert.Equal(t, []string{"zz", "aa", "mm"}, Hostnames(entries))
}
