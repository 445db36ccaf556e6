package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	t.Parallel()

	err := UserError{
		Message:    "No valid host entries",
		Details:    "all rows incomplete",
		Suggestion: "Check the CSV columns",
	}

	msg := err.Error()
	assert.Contains(t, msg, "No valid host entries")
	assert.Contains(t, msg, "Details: all rows incomplete")
	assert.Contains(t, msg, "Try: Check the CSV columns")
}

func TestUserError_FallsBackToWrapped(t *testing.T) {
	t.Parallel()

	inner := stderrors.New("disk full")
	err := UserError{Err: inner}

	assert.Contains(t, err.Error(), "disk full")
	require.ErrorIs(t, error(err), inner)
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := ConfigError{
		Field:      "protocol",
		Value:      "telnet",
		Message:    "unsupported protocol",
		Suggestion: "Choose one of: rdp, ssh",
	}

	msg := err.Error()
	assert.Contains(t, msg, "field 'protocol'")
	assert.Contains(t, msg, "value: telnet")
	assert.Contains(t, msg, "unsupported protocol")
	assert.Contains(t, msg, "Choose one of")
}

func TestInputError(t *testing.T) {
	t.Parallel()

	inner := stderrors.New("no such file")
	err := InputError{
		Path:       "/tmp/servers.csv",
		Message:    "CSV file not found or unreadable",
		Suggestion: "Check the --csv path",
		Err:        inner,
	}

	msg := err.Error()
	assert.Contains(t, msg, "/tmp/servers.csv")
	assert.Contains(t, msg, "CSV file not found")
	require.ErrorIs(t, error(err), inner)
}
