package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Janitor is a scheduled job that removes downloaded files older than
// MaxAge from the downloads directory. It implements cron.Job.
type Janitor struct {
	dir      string
	maxAge   time.Duration
	schedule string
	logger   *slog.Logger
}

// NewJanitor creates a downloads janitor. Files older than maxAge are
// removed on each run.
func NewJanitor(dir string, maxAge time.Duration, schedule string, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if schedule == "" {
		schedule = "*/15 * * * *"
	}
	return &Janitor{
		dir:      dir,
		maxAge:   maxAge,
		schedule: schedule,
		logger:   logger,
	}
}

// Name identifies the job in scheduler logs.
func (j *Janitor) Name() string { return "downloads_janitor" }

// Schedule returns the cron expression for the job.
func (j *Janitor) Schedule() string { return j.schedule }

// Run deletes regular files in the downloads directory whose modification
// time is older than MaxAge. Subdirectories are skipped. A missing
// directory is not an error — there is simply nothing to clean.
func (j *Janitor) Run(ctx context.Context) error {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cleanup: list %s: %w", j.dir, err)
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Raced with an external delete; nothing to do.
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.logger.Warn("janitor failed to remove file", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.Info("janitor removed stale downloads", "count", removed, "max_age", j.maxAge)
	}
	return nil
}
