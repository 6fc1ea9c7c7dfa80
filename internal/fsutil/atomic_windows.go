// SPDX-License-Identifier: MIT

//go:build windows

package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	xglog "github.com/ManuGH/mytv/internal/log"
)

// WriteFileAtomic writes data via temp file + rename.
// Note: Windows doesn't support atomic rename with fsync like Unix
func WriteFileAtomic(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	logger := xglog.FromContext(ctx)

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".mytv-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// Close before rename (Windows requires this)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}

	logger.Debug().Str(xglog.FieldPath, path).Msg("wrote file")
	return nil
}
