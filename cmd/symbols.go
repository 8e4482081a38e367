// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeberg.org/poreach/poreach/exchange"
	"codeberg.org/poreach/poreach/extract"
	"codeberg.org/poreach/poreach/reach"
)

func newSymbolsCmd() *cobra.Command {
	var (
		keymap     string
		localeRoot string
		lang       string
		domain     string
		dir        string
		manifest   string
		packages   string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Extract untranslated entries reachable through dotted symbol keys",
		Long: "symbols reads a keymap of dotted symbol paths to help strings, resolves each\n" +
			"path against the reachability source, and extracts the catalog entries whose\n" +
			"msgid matches a resolvable key's string.",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := reach.LoadKeymap(fsys, keymap)
			if err != nil {
				return err
			}

			src, err := buildSource(cmd.Context(), dir, manifest, packages)
			if err != nil {
				return err
			}

			f, _, err := openCatalog(localeRoot, orDefault(lang, cfg.Lang), orDefault(domain, cfg.Domain))
			if err != nil {
				return err
			}

			recs := extract.RunKeys(f, &reach.DottedSymbol{Keys: keys, Source: src})

			if err := exchange.WriteRecords(fsys, output, recs); err != nil {
				return err
			}

			log.Info().Int("entries", len(recs)).Str("path", output).Msg("Wrote extraction output")

			return nil
		},
	}

	cmd.Flags().StringVarP(&keymap, "keymap", "k", "", "YAML file mapping dotted keys to their strings")
	cmd.Flags().StringVarP(&localeRoot, "locale-root", "l", "", "Locale directory holding <lang>/LC_MESSAGES")
	cmd.Flags().StringVarP(&lang, "lang", "L", "", "Language code of the catalog")
	cmd.Flags().StringVar(&domain, "domain", "", "Gettext domain")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory Go package patterns are resolved under")
	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest of loaded modules")
	cmd.Flags().StringVar(&packages, "packages", "", "Go package pattern to load as the reachability source")
	cmd.Flags().StringVarP(&output, "output", "o", "translateables.json", "Output JSON file")

	_ = cmd.MarkFlagRequired("keymap")
	_ = cmd.MarkFlagRequired("locale-root")

	return cmd
}
