// Package cleanup removes disposable working-directory artifacts: downloaded
// files, the cache directory, and log files.
package cleanup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Defaults for the three cleanup categories.
const (
	DefaultDownloadsDir = "downloads"
	DefaultCacheDir     = "cache"
	DefaultLogSuffix    = ".log"
)

// Cleaner purges three independent categories of disposable artifacts.
// All operations are idempotent and order-insensitive: purging an already
// clean tree succeeds with zero counts.
type Cleaner struct {
	// DownloadsDir holds downloaded files. Only regular files directly
	// inside it are removed; subdirectories are left untouched.
	DownloadsDir string

	// CacheDir is removed recursively as a unit. Absence is success.
	CacheDir string

	// LogDir is scanned (non-recursively) for log files. Defaults to the
	// current working directory.
	LogDir string

	// LogSuffix selects which files in LogDir are logs.
	LogSuffix string
}

// New returns a Cleaner with the default directory layout.
func New() *Cleaner {
	return &Cleaner{
		DownloadsDir: DefaultDownloadsDir,
		CacheDir:     DefaultCacheDir,
		LogDir:       ".",
		LogSuffix:    DefaultLogSuffix,
	}
}

// PurgeDownloads deletes the regular files directly inside DownloadsDir and
// returns how many were removed. Subdirectories and their contents are kept.
// A missing downloads directory counts as already clean.
func (c *Cleaner) PurgeDownloads() (int, error) {
	entries, err := os.ReadDir(c.DownloadsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("cleanup: list %s: %w", c.DownloadsDir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(c.DownloadsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("cleanup: remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// PurgeCache removes CacheDir recursively. A missing cache directory is
// success: nothing to delete means the goal state is already reached.
func (c *Cleaner) PurgeCache() error {
	if err := os.RemoveAll(c.CacheDir); err != nil {
		return fmt.Errorf("cleanup: remove %s: %w", c.CacheDir, err)
	}
	return nil
}

// PurgeLogs deletes files in LogDir whose names end in LogSuffix and
// returns how many were removed. The scan is non-recursive.
func (c *Cleaner) PurgeLogs() (int, error) {
	dir := c.LogDir
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("cleanup: list %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), c.LogSuffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("cleanup: remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// Run executes all three purge categories, writing one status line per
// category to w. Categories are independent: a failure in one is reported
// and the rest still run. The returned error joins all category failures.
func (c *Cleaner) Run(w io.Writer) error {
	var errs []error

	n, err := c.PurgeDownloads()
	if err != nil {
		fmt.Fprintf(w, "downloads: error: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(w, "downloads: removed %d file(s)\n", n)
	}

	if err := c.PurgeCache(); err != nil {
		fmt.Fprintf(w, "cache:     error: %v\n", err)
		errs = append(errs, err)
	} else {
		fmt.Fprintf(w, "cache:     cleared\n")
	}

	k, err := c.PurgeLogs()
	switch {
	case err != nil:
		fmt.Fprintf(w, "logs:      error: %v\n", err)
		errs = append(errs, err)
	case k == 0:
		fmt.Fprintf(w, "logs:      none found\n")
	default:
		fmt.Fprintf(w, "logs:      removed %d file(s)\n", k)
	}

	return errors.Join(errs...)
}
