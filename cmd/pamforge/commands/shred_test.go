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

func TestShredCommand_NoFilesError(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{}) // No files

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No files specified")
}

func TestShredCommand_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", "/nonexistent/file.txt"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot access path")
}

func TestShredCommand_ShredsFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "secret.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("h1,admin,hunter2"), 0644))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", testFile})

	require.NoError(t, cmd.Execute())

	_, err := os.Stat(testFile)
	assert.True(t, os.IsNotExist(err), "file should be deleted after shred")
}

func TestShredCommand_InvalidPasses(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	tests := []struct {
		name   string
		passes string
	}{
		{"zero passes", "0"},
		{"negative passes", "-1"},
		{"too many passes", "11"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tempDir := t.TempDir()
			testFile := filepath.Join(tempDir, "secret.csv")
			require.NoError(t, os.WriteFile(testFile, []byte("data"), 0644))

			cmd := NewShredCommand(cfg)
			cmd.SetArgs([]string{"--force", "--passes", tt.passes, testFile})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Invalid number of passes")
		})
	}
}

func TestShredCommand_DirectoryRequiresRecursive(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "onboarding")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", subDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--recursive")
}

func TestShredCommand_NonInteractiveNeedsForce(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "secret.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("data"), 0644))

	cfg := &config.Config{
		Logger:         logging.New(false, true),
		NonInteractive: true,
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{testFile})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, statErr := os.Stat(testFile)
	assert.NoError(t, statErr, "file must survive a refused confirmation")
}
