// Package shred implements best-effort secure deletion: overwrite with
// random data, sync, then remove. Modern SSDs with wear leveling and
// filesystem snapshots may still retain data; this is advisory
// protection, not a recovery guarantee.
package shred

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"

	pferrors "github.com/systmms/pamforge/internal/errors"
	"github.com/systmms/pamforge/internal/logging"
)

// DefaultPasses is the number of overwrite passes used when the caller
// does not specify one.
const DefaultPasses = 3

// File overwrites path with random data for the given number of
// passes, syncs each pass to durable storage, then removes the file.
func File(path string, passes int) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	size := info.Size()
	if size == 0 {
		return os.Remove(path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	for pass := 1; pass <= passes; pass++ {
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		if err := overwriteWithRandom(f, size); err != nil {
			return err
		}
		if err := f.Sync(); err != nil {
			return err
		}
	}

	_ = f.Close()
	return os.Remove(path)
}

// Files shreds each existing path in turn. Individual failures are
// logged and do not abort the remaining files; missing paths are
// skipped silently. Returns the number of files successfully shredded.
func Files(paths []string, passes int, log *logging.Logger) int {
	if passes < 1 {
		passes = DefaultPasses
	}
	shredded := 0
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := File(path, passes); err != nil {
			log.Error("Failed to shred %s: %v", path, err)
			continue
		}
		log.Info("Shredded %s", path)
		shredded++
	}
	return shredded
}

// Collect expands path into the list of files to shred. Directories
// require recursive to be set.
func Collect(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, pferrors.UserError{
			Message:    "Cannot access path: " + path,
			Details:    err.Error(),
			Suggestion: "Check that the file or directory exists and is accessible",
		}
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if !recursive {
		return nil, pferrors.UserError{
			Message:    "Path is a directory: " + path,
			Suggestion: "Use --recursive to shred directories",
		}
	}

	var files []string
	err = filepath.Walk(path, func(walkPath string, walkInfo os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !walkInfo.IsDir() {
			files = append(files, walkPath)
		}
		return nil
	})
	if err != nil {
		return nil, pferrors.UserError{
			Message: "Error walking directory: " + path,
			Details: err.Error(),
		}
	}
	return files, nil
}

func overwriteWithRandom(w io.Writer, size int64) error {
	const bufSize = 64 * 1024

	buf := make([]byte, bufSize)
	remaining := size

	for remaining > 0 {
		writeSize := bufSize
		if remaining < int64(bufSize) {
			writeSize = int(remaining)
		}
		if _, err := rand.Read(buf[:writeSize]); err != nil {
			return err
		}
		if _, err := w.Write(buf[:writeSize]); err != nil {
			return err
		}
		remaining -= int64(writeSize)
	}
	return nil
}
