// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"

	"github.com/ManuGH/mytv/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(newConfigValidateCommand(root))
	return cmd
}

func newConfigValidateCommand(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a YAML configuration file (strict parsing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = root.effectiveConfigPath()
			}
			if file == "" {
				return errors.New("--file is required")
			}
			if _, err := config.NewLoader(file, version).Load(); err != nil {
				return fmt.Errorf("configuration error in %s: %w", file, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", file)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to YAML configuration file")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (commit: %s, built: %s)\n", version, commit, buildDate)
			return err
		},
	}
}
