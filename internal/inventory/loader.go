// Package inventory loads and validates the host/credential CSV that
// drives a generation run.
package inventory

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/logging"
	"github.com/systmms/pamforge/internal/secure"
)

// HostEntry is one validated input row. Entries are immutable after
// loading; the password lives in a protected buffer until the record
// batch is serialized.
type HostEntry struct {
	Hostname string
	Username string
	Password *secure.Buffer
}

// Options controls CSV parsing.
type Options struct {
	// NoHeader marks the input as the strict headerless three-column
	// variant. The default form carries a
	// hostname,initial_admin_user,initial_admin_password header.
	NoHeader bool
}

// Load parses the CSV at path into an ordered, deduplicated sequence of
// host entries. File order is preserved so downstream command
// generation is deterministic. Incomplete rows and duplicate hostnames
// are skipped with a warning; a missing or unreadable file is fatal.
func Load(path string, opts Options, log *logging.Logger) ([]HostEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pferrors.InputError{
			Path:       path,
			Message:    "CSV file not found or unreadable",
			Suggestion: "Check the --csv path; the file must exist before generation",
			Err:        err,
		}
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var entries []HostEntry
	seen := make(map[string]bool)
	row := 0
	first := true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			row++
			log.Warn("Row %d malformed (%v) - skipped", row, parseErr.Err)
			first = false
			continue
		}
		if err != nil {
			return nil, pferrors.InputError{
				Path:    path,
				Message: "failed to read CSV",
				Err:     err,
			}
		}

		// A leading header row is recognized by its first column.
		if first && !opts.NoHeader && len(record) > 0 &&
			strings.EqualFold(strings.TrimSpace(record[0]), "hostname") {
			first = false
			continue
		}
		first = false
		row++

		if len(record) < 3 {
			log.Warn("Row %d incomplete - skipped", row)
			continue
		}
		host := strings.TrimSpace(record[0])
		user := strings.TrimSpace(record[1])
		pass := strings.TrimSpace(record[2])
		if host == "" || user == "" || pass == "" {
			// Never echo the password field back into the log.
			log.Warn("Row %d incomplete - skipped", row)
			continue
		}
		if seen[host] {
			log.Warn("Duplicate hostname %s - skipped", host)
			continue
		}
		seen[host] = true

		entries = append(entries, HostEntry{
			Hostname: host,
			Username: user,
			Password: secure.NewBufferFromString(pass),
		})
	}

	return entries, nil
}

// Hostnames returns the hostnames of entries in order.
func Hostnames(entries []HostEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Hostname)
	}
	return names
}
