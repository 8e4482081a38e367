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

func newModulesCmd() *cobra.Command {
	var (
		localeRoot string
		lang       string
		domain     string
		root       string
		manifest   string
		packages   string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Extract untranslated entries whose source module is loaded",
		Long: "modules walks every catalog entry's recorded occurrences, maps each source\n" +
			"file to a dotted module name under the package root, and extracts the entry\n" +
			"when any of those modules is known to the reachability source.",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := buildSource(cmd.Context(), root, manifest, packages)
			if err != nil {
				return err
			}

			strategy, err := reach.NewModulePath(fsys, root, cfg.SourceExts, src)
			if err != nil {
				return err
			}

			f, _, err := openCatalog(localeRoot, orDefault(lang, cfg.Lang), orDefault(domain, cfg.Domain))
			if err != nil {
				return err
			}

			recs := extract.Run(f, strategy)

			if err := exchange.WriteRecords(fsys, output, recs); err != nil {
				return err
			}

			log.Info().Int("entries", len(recs)).Str("path", output).Msg("Wrote extraction output")

			return nil
		},
	}

	cmd.Flags().StringVarP(&localeRoot, "locale-root", "l", "", "Locale directory holding <lang>/LC_MESSAGES")
	cmd.Flags().StringVarP(&lang, "lang", "L", "", "Language code of the catalog")
	cmd.Flags().StringVar(&domain, "domain", "", "Gettext domain")
	cmd.Flags().StringVarP(&root, "root", "p", "", "Package root occurrence paths are relative to")
	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest of loaded modules")
	cmd.Flags().StringVar(&packages, "packages", "", "Go package pattern to load as the reachability source")
	cmd.Flags().StringVarP(&output, "output", "o", "translateables.json", "Output JSON file")

	_ = cmd.MarkFlagRequired("locale-root")
	_ = cmd.MarkFlagRequired("root")

	return cmd
}
