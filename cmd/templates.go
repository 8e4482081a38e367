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

func newTemplatesCmd() *cobra.Command {
	var (
		localeRoot string
		lang       string
		domain     string
		suffixes   []string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Extract untranslated entries recorded in template files",
		Long: "templates extracts every untranslated entry with at least one occurrence in a\n" +
			"template file, classified purely by path suffix. No source tree is consulted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := openCatalog(localeRoot, orDefault(lang, cfg.Lang), orDefault(domain, cfg.Domain))
			if err != nil {
				return err
			}

			if len(suffixes) == 0 {
				suffixes = cfg.TemplateSuffixes
			}

			recs := extract.Run(f, &reach.TemplateSource{Suffixes: suffixes})

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
	cmd.Flags().StringArrayVar(&suffixes, "suffix", nil, "Template file suffix to accept (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "translateables_html.json", "Output JSON file")

	_ = cmd.MarkFlagRequired("locale-root")

	return cmd
}
