package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/pamforge/internal/config"
	"github.com/systmms/pamforge/internal/logging"
)

func testGenerateConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Path:   filepath.Join(dir, "pamforge.yaml"),
		Logger: logging.New(false, true),
		// A preset log path keeps the command from creating a per-run
		// log file in the working directory during tests.
		LogFile: filepath.Join(dir, "run.log"),
	}
	return cfg, dir
}

func TestGenerateCommand_WritesArtifacts(t *testing.T) {
	t.Parallel()

	cfg, dir := testGenerateConfig(t)
	csvPath := filepath.Join(dir, "servers.csv")
	require.NoError(t, os.WriteFile(csvPath,
		[]byte("hostname,initial_admin_user,initial_admin_password\nh1,u1,p1\nh2,u2,p2\n"), 0600))

	recPath := filepath.Join(dir, "records.json")
	cmdPath := filepath.Join(dir, "commands.txt")

	cmd := NewGenerateCommand(cfg)
	cmd.SetArgs([]string{
		"--gateway", "GW123",
		"--csv", csvPath,
		"--protocol", "ssh",
		"--out-records", recPath,
		"--out-commands", cmdPath,
	})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(recPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc["records"], 4)

	raw, err := os.ReadFile(cmdPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "--connections-override-port 22")
}

func TestGenerateCommand_DryRun(t *testing.T) {
	t.Parallel()

	cfg, dir := testGenerateConfig(t)
	csvPath := filepath.Join(dir, "servers.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("h1,u1,p1\n"), 0600))

	recPath := filepath.Join(dir, "records.json")
	cmdPath := filepath.Join(dir, "commands.txt")

	cmd := NewGenerateCommand(cfg)
	cmd.SetArgs([]string{
		"--gateway", "GW123",
		"--csv", csvPath,
		"--no-header",
		"--out-records", recPath,
		"--out-commands", cmdPath,
		"--dry-run",
	})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(recPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cmdPath)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateCommand_MissingGateway(t *testing.T) {
	t.Parallel()

	cfg, dir := testGenerateConfig(t)
	csvPath := filepath.Join(dir, "servers.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("h1,u1,p1\n"), 0600))

	cmd := NewGenerateCommand(cfg)
	cmd.SetArgs([]string{"--csv", csvPath, "--no-header"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway")
}

func TestGenerateCommand_MissingCSV(t *testing.T) {
	t.Parallel()

	cfg, dir := testGenerateConfig(t)

	cmd := NewGenerateCommand(cfg)
	cmd.SetArgs([]string{
		"--gateway", "GW123",
		"--csv", filepath.Join(dir, "nope.csv"),
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV file not found")
}

func TestGenerateCommand_ConfigFileDefaults(t *testing.T) {
	t.Parallel()

	cfg, dir := testGenerateConfig(t)
	csvPath := filepath.Join(dir, "servers.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("h1,u1,p1\n"), 0600))

	recPath := filepath.Join(dir, "records.json")
	cmdPath := filepath.Join(dir, "commands.txt")
	require.NoError(t, os.WriteFile(cfg.Path, []byte(
		"version: 1\ngateway: GW_FROM_FILE\nno_header: true\ncsv: "+csvPath+
			"\nconnection:\n  protocol: ssh\noutput:\n  records: "+recPath+
			"\n  commands: "+cmdPath+"\n"), 0600))

	cmd := NewGenerateCommand(cfg)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(cmdPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "-g GW_FROM_FILE")
}
