// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"strings"

	"github.com/ManuGH/mytv/internal/config"
	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// effectiveConfigPath returns --config, falling back to MYTV_CONFIG.
func (o *rootOptions) effectiveConfigPath() string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(config.EnvConfigPath))
}

// loadConfig loads ENV > file > defaults and reconfigures logging from it.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.AppConfig, error) {
	xglog.Configure(xglog.Config{Output: cmd.OutOrStdout(), Service: "mytv", Version: version})

	path := o.effectiveConfigPath()
	cfg, err := config.NewLoader(path, version).Load()
	if err != nil {
		logger := xglog.WithComponent("cli")
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
		return config.AppConfig{}, err
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Output: cmd.OutOrStdout(), Service: "mytv", Version: cfg.Version})
	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger := xglog.WithComponent("cli")
	logger.Debug().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, path).
		Msg("configuration loaded")
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	gen := &generateOptions{root: opts}

	rootCmd := &cobra.Command{
		Use:           "mytv",
		Short:         "Build the combined IPTV playlist and XMLTV guide",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gen.run(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (YAML), defaults to $MYTV_CONFIG")
	gen.bindFlags(rootCmd)

	rootCmd.AddCommand(newGenerateCommand(opts))
	rootCmd.AddCommand(newKodiSettingsCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
