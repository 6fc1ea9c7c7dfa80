// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManuGH/mytv/internal/fsutil"
)

// PrepareOutputDir creates dir if needed.
func PrepareOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// WritePlaylist writes the combined playlist as UTF-8 text and returns the
// size of the written file.
func WritePlaylist(ctx context.Context, path, text string) (int64, error) {
	if err := fsutil.WriteFileAtomic(ctx, path, []byte(text), 0o644); err != nil {
		return 0, fmt.Errorf("write playlist: %w", err)
	}
	return fileSize(path)
}

// WriteGuide writes gzip-encoded guide data and returns the size of the
// written file.
func WriteGuide(ctx context.Context, path string, gz []byte) (int64, error) {
	if err := fsutil.WriteFileAtomic(ctx, path, gz, 0o644); err != nil {
		return 0, fmt.Errorf("write guide: %w", err)
	}
	return fileSize(path)
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	return fi.Size(), nil
}
