package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileTooLarge is returned when a file exceeds the download size cap.
var ErrFileTooLarge = errors.New("telegram: file too large")

// DownloadFile fetches the file identified by fileID into dir and returns
// the local path. Files larger than maxBytes are rejected before any bytes
// are transferred (maxBytes <= 0 disables the cap). The stored name is the
// file's unique ID plus the original extension so concurrent downloads of
// equally named files cannot collide.
func (c *Client) DownloadFile(ctx context.Context, fileID, dir string, maxBytes int64) (string, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}

	if maxBytes > 0 && int64(info.FileSize) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.FileSize, maxBytes)
	}
	if info.FilePath == "" {
		return "", errors.New("telegram: getFile returned no file_path")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("telegram: create download dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FileURL(info.FilePath), nil)
	if err != nil {
		return "", fmt.Errorf("telegram: create download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("telegram: download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telegram: download returned HTTP %d", resp.StatusCode)
	}

	local := filepath.Join(dir, localFileName(info))

	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("telegram: create %s: %w", local, err)
	}

	reader := io.Reader(resp.Body)
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, maxBytes+1)
	}

	n, err := io.Copy(f, reader)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(local)
		return "", fmt.Errorf("telegram: write %s: %w", local, err)
	}
	if closeErr != nil {
		_ = os.Remove(local)
		return "", fmt.Errorf("telegram: close %s: %w", local, closeErr)
	}
	if maxBytes > 0 && n > maxBytes {
		_ = os.Remove(local)
		return "", fmt.Errorf("%w: body exceeded %d bytes", ErrFileTooLarge, maxBytes)
	}

	return local, nil
}

// localFileName derives a collision-free local name from file metadata.
func localFileName(info *File) string {
	ext := filepath.Ext(info.FilePath)
	name := info.FileUniqueID
	if name == "" {
		name = strings.ReplaceAll(info.FileID, "/", "_")
	}
	return name + ext
}
