package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/pamforge/internal/config"
	"github.com/systmms/pamforge/internal/logging"
)

func TestInitCommand_CreatesConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Path:   filepath.Join(t.TempDir(), "pamforge.yaml"),
		Logger: logging.New(false, true),
	}

	cmd := NewInitCommand(cfg)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(cfg.Path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "version: 1")
	assert.Contains(t, content, "protocol: rdp")

	// The scaffold must itself be loadable.
	loaded := &config.Config{Path: cfg.Path}
	require.NoError(t, loaded.Load())
	assert.Equal(t, "PAM_Users", loaded.Definition.Folders.Users)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Path:   filepath.Join(t.TempDir(), "pamforge.yaml"),
		Logger: logging.New(false, true),
	}
	require.NoError(t, os.WriteFile(cfg.Path, []byte("version: 1\n"), 0600))

	cmd := NewInitCommand(cfg)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
