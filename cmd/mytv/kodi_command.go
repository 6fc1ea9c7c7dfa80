// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ManuGH/mytv/internal/jobs"
	"github.com/ManuGH/mytv/internal/kodi"
	xglog "github.com/ManuGH/mytv/internal/log"
	"github.com/spf13/cobra"
)

type kodiOptions struct {
	mode         string
	playlist     string
	guide        string
	baseURL      string
	settingsFile string
}

func newKodiSettingsCommand(root *rootOptions) *cobra.Command {
	opts := &kodiOptions{}
	cmd := &cobra.Command{
		Use:   "kodi-settings",
		Short: "Print or apply pvr.iptvsimple settings for the generated files",
		Long: "Builds the PVR IPTV Simple Client settings pointing at the generated playlist and guide.\n" +
			"Local mode uses file paths under the output directory; remote mode uses URLs under --base-url.\n" +
			"Without --settings-file the settings.xml document is printed to stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := kodi.ParseMode(opts.mode)
			if err != nil {
				return err
			}
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}

			playlist, guide, err := opts.locations(mode, cfg.OutputDir)
			if err != nil {
				return err
			}
			settings, err := kodi.Build(mode, playlist, guide)
			if err != nil {
				return err
			}

			if opts.settingsFile == "" {
				return kodi.RenderXML(cmd.OutOrStdout(), settings)
			}

			sink, err := kodi.OpenFileSink(opts.settingsFile)
			if err != nil {
				return err
			}
			if err := kodi.Apply(sink, settings); err != nil {
				return err
			}
			if err := sink.Save(cmd.Context()); err != nil {
				return err
			}
			logger := xglog.WithComponent("kodi")
			logger.Info().
				Str(xglog.FieldEvent, "kodi.configured").
				Str("mode", string(mode)).
				Str(xglog.FieldPath, opts.settingsFile).
				Msg("PVR IPTV Simple configured, restart Kodi and enable Live TV")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", string(kodi.ModeLocal), "Source mode: local or remote")
	cmd.Flags().StringVar(&opts.playlist, "playlist", "", "Playlist path or URL (overrides the derived location)")
	cmd.Flags().StringVar(&opts.guide, "epg", "", "Guide path or URL (overrides the derived location)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Base URL the output directory is published under (remote mode)")
	cmd.Flags().StringVar(&opts.settingsFile, "settings-file", "", "Kodi addon_data/"+kodi.AddonID+"/settings.xml to update in place")
	return cmd
}

func (o *kodiOptions) locations(mode kodi.Mode, outputDir string) (string, string, error) {
	playlist, guide := o.playlist, o.guide

	switch mode {
	case kodi.ModeLocal:
		abs, err := filepath.Abs(outputDir)
		if err != nil {
			return "", "", fmt.Errorf("resolve output dir: %w", err)
		}
		if playlist == "" {
			playlist = filepath.Join(abs, jobs.PlaylistFile)
		}
		if guide == "" {
			guide = filepath.Join(abs, jobs.GuideFile)
		}
	case kodi.ModeRemote:
		base := strings.TrimRight(o.baseURL, "/")
		if base == "" && (playlist == "" || guide == "") {
			return "", "", errors.New("remote mode needs --base-url or both --playlist and --epg")
		}
		if playlist == "" {
			playlist = base + "/" + jobs.PlaylistFile
		}
		if guide == "" {
			guide = base + "/" + jobs.GuideFile
		}
	}
	return playlist, guide, nil
}
