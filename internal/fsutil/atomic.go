// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

//go:build !windows

package fsutil

import (
	"context"
	"fmt"
	"os"

	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/google/renameio/v2"
)

// WriteFileAtomic writes data to path with fsync before rename, so readers see
// either the previous file or the complete new one.
func WriteFileAtomic(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	logger := xglog.FromContext(ctx)

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer func() {
		// no-op once committed
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str(xglog.FieldPath, path).Msg("cleanup pending file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
