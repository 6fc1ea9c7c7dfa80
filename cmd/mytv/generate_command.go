// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/mytv/internal/config"
	"github.com/ManuGH/mytv/internal/fsutil"
	"github.com/ManuGH/mytv/internal/jobs"
	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/ManuGH/mytv/internal/telemetry"
	"github.com/spf13/cobra"
)

const telemetryShutdownTimeout = 5 * time.Second

type generateOptions struct {
	root       *rootOptions
	statusFile string
}

func (o *generateOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.statusFile, "status-file", "", "Write the run status as JSON to this path")
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	opts := &generateOptions{root: root}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fetch sources, write the playlist and request the guide (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}
	opts.bindFlags(cmd)
	return cmd
}

func (o *generateOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := o.root.loadConfig(cmd)
	if err != nil {
		return err
	}

	provider, err := telemetry.NewProvider(ctx, tracingConfig(cfg))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger := xglog.WithComponent("cli")
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	status, err := jobs.Generate(ctx, cfg, jobs.NewDeps(cfg))
	if err != nil {
		logger := xglog.WithComponent("cli")
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "generate.failed").
			Msg("generation failed")
		return err
	}

	if o.statusFile != "" {
		raw, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("encode status: %w", err)
		}
		if err := fsutil.WriteFileAtomic(ctx, o.statusFile, append(raw, '\n'), 0o644); err != nil {
			return fmt.Errorf("write status file: %w", err)
		}
	}
	return nil
}

func tracingConfig(cfg config.AppConfig) telemetry.Config {
	return telemetry.Config{
		Enabled:        cfg.Tracing.Exporter != "",
		ServiceName:    "mytv",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	}
}
