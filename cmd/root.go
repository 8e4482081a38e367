// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package cmd wires the poreach subcommands. Each command is a thin
// adapter from flags to the catalog, reach, extract, merge and provider
// packages; nothing here carries domain logic of its own.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	vfs "github.com/twpayne/go-vfs"

	"codeberg.org/poreach/poreach/config"
)

// fsys is the filesystem every command operates on. Tests swap it for a
// vfst tree.
var fsys vfs.FS = vfs.OSFS

// cfg is populated by the root PersistentPreRunE before any RunE fires.
var cfg *config.Config

// NewRootCmd builds the command tree. Persistent flags are bound through
// viper so POREACH_* environment variables stand in for any of them.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "poreach",
		Short:         "Reachability-filtered translation catalog toolkit",
		Long:          "poreach extracts the untranslated, still-reachable strings of a gettext catalog,\nhands them to a translation provider, and merges the results back in.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Install the console writer before config loading logs
			// anything, then again once the configured level is known.
			config.SetupLogging(viper.GetString("log-level"), viper.GetBool("quiet"))

			c, err := config.Load(fsys, viper.GetString("config"))
			if err != nil {
				return err
			}

			cfg = c

			level := viper.GetString("log-level")
			if level == "" {
				level = cfg.Log.Level
			}

			config.SetupLogging(level, viper.GetBool("quiet"))

			return nil
		},
	}

	cmd.PersistentFlags().String("config", "poreach.yml", "Path to the YAML configuration file")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().Bool("quiet", false, "Only log warnings and errors")

	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	viper.SetEnvPrefix("POREACH")
	// Flag names use dashes; their env counterparts use underscores
	// (POREACH_LOG_LEVEL for --log-level).
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cmd.AddCommand(
		newModulesCmd(),
		newSymbolsCmd(),
		newTemplatesCmd(),
		newTranslateCmd(),
		newUpdateCmd(),
		newCompileCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the command tree under an interrupt-aware context. An
// interrupted run exits 130, any other failure exits 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}

		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// orDefault falls back to the configured value when a flag was left empty.
func orDefault(flag, configured string) string {
	if flag != "" {
		return flag
	}

	return configured
}
