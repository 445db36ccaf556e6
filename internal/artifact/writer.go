// Package artifact serializes generated batches and command scripts to
// disk. Writes are all-or-nothing: content is staged and renamed into
// place so a failed write never leaves a partial file behind. The
// import JSON is validated against the record-batch schema before
// anything touches the filesystem.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/xeipuuv/gojsonschema"

	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/logging"
	"github.com/systmms/pamforge/internal/records"
	"github.com/systmms/pamforge/internal/script"
)

// batchSchema structurally enforces what the downstream import
// requires: the settings placeholder always present, the
// SSL-verification flag an explicit boolean, and every machine carrying
// exactly one credential link.
const batchSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["shared_folders", "records"],
  "properties": {
    "shared_folders": {"type": "array"},
    "records": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["$type", "title", "folders"],
        "properties": {
          "$type": {"enum": ["pamUser", "pamMachine"]},
          "title": {"type": "string", "minLength": 1},
          "folders": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["shared_folder", "can_edit", "can_share"]
            }
          }
        },
        "allOf": [
          {
            "if": {"properties": {"$type": {"const": "pamUser"}}},
            "then": {"required": ["uid", "login", "password"]}
          },
          {
            "if": {"properties": {"$type": {"const": "pamMachine"}}},
            "then": {
              "required": ["custom_fields", "links"],
              "properties": {
                "links": {"type": "array", "minItems": 1, "maxItems": 1},
                "custom_fields": {
                  "type": "object",
                  "required": [
                    "$pamSettings",
                    "$pamHostname",
                    "$checkbox:sslVerification",
                    "operatingSystem"
                  ],
                  "properties": {
                    "$pamSettings": {
                      "type": "object",
                      "required": ["connection", "portForward"]
                    },
                    "$pamHostname": {
                      "type": "object",
                      "required": ["hostName", "port"]
                    },
                    "$checkbox:sslVerification": {"type": "boolean"}
                  }
                }
              }
            }
          }
        ]
      }
    }
  }
}`

// Writer serializes run artifacts. In dry-run mode it performs no
// filesystem mutation and logs what would have been written instead.
type Writer struct {
	log    *logging.Logger
	dryRun bool
}

// NewWriter creates an artifact writer.
func NewWriter(log *logging.Logger, dryRun bool) *Writer {
	return &Writer{log: log, dryRun: dryRun}
}

// WriteBatch validates and writes the import JSON. Validation failures
// and I/O failures are both fatal: downstream stages depend on the file
// being complete and schema-clean.
func (w *Writer) WriteBatch(path string, batch *records.Batch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize record batch: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(batchSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("record batch schema check failed: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return pferrors.UserError{
			Message: "generated record batch failed schema validation",
			Details: strings.Join(details, "; "),
		}
	}

	if w.dryRun {
		w.log.Info("[DRY-RUN] Would write %s (%d records, %d shared folders)",
			path, len(batch.Pairs)*2, len(batch.SharedFolders))
		// Titles only; record bodies carry cleartext credentials.
		for i := range batch.Pairs {
			w.log.Info("[DRY-RUN]   pamUser    %s", batch.Pairs[i].User.Title)
			w.log.Info("[DRY-RUN]   pamMachine %s", batch.Pairs[i].Machine.Title)
		}
		return nil
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return pferrors.UserError{
			Message:    fmt.Sprintf("Failed to write %s", path),
			Details:    err.Error(),
			Suggestion: "Check disk space and directory permissions",
			Err:        err,
		}
	}
	w.log.Info("Wrote %s (%d records)", path, len(batch.Pairs)*2)
	return nil
}

// WriteScript writes the rendered command sequence.
func (w *Writer) WriteScript(path string, s *script.Script) error {
	content := s.Render()

	if w.dryRun {
		w.log.Info("[DRY-RUN] Would write %s (%d commands in %d stages)",
			path, s.CommandCount(), len(s.Stages))
		for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
			w.log.Info("[DRY-RUN]   %s", line)
		}
		return nil
	}

	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return pferrors.UserError{
			Message:    fmt.Sprintf("Failed to write %s", path),
			Details:    err.Error(),
			Suggestion: "Check disk space and directory permissions",
			Err:        err,
		}
	}
	w.log.Info("Wrote %s (%d commands in %d stages)", path, s.CommandCount(), len(s.Stages))
	return nil
}
