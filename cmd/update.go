// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeberg.org/poreach/poreach/catalog"
	"codeberg.org/poreach/poreach/exchange"
	"codeberg.org/poreach/poreach/merge"
)

func newUpdateCmd() *cobra.Command {
	var (
		translations []string
		localeRoot   string
		lang         string
		domain       string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge translation files back into a catalog and compile it",
		Long: "update applies one or more translation files to the locale's catalog, saves\n" +
			"the PO text and compiles the MO sibling. Unknown msgids, empty values and\n" +
			"plural shape mismatches are counted and reported, never fatal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, poPath, err := openCatalog(localeRoot, orDefault(lang, cfg.Lang), orDefault(domain, cfg.Domain))
			if err != nil {
				return err
			}

			var lists [][]exchange.Translation

			for _, path := range translations {
				ts, err := exchange.ReadTranslations(fsys, path)
				if errors.Is(err, os.ErrNotExist) {
					log.Warn().Str("path", path).Msg("Translations file not found, skipping")

					continue
				} else if err != nil {
					return err
				}

				log.Info().Int("translations", len(ts)).Str("path", path).Msg("Loaded translations")
				lists = append(lists, ts)
			}

			all := exchange.Merge(lists...)

			if _, err := merge.Run(fsys, f, poPath, all); err != nil {
				return err
			}

			return verifyMo(catalog.MoSibling(poPath))
		},
	}

	cmd.Flags().StringArrayVarP(&translations, "translations", "t", nil, "Translation JSON file to apply (repeatable)")
	cmd.Flags().StringVarP(&localeRoot, "locale-root", "l", "", "Locale directory holding <lang>/LC_MESSAGES")
	cmd.Flags().StringVar(&lang, "lang", "", "Language code of the catalog")
	cmd.Flags().StringVar(&domain, "domain", "", "Gettext domain")

	_ = cmd.MarkFlagRequired("translations")
	_ = cmd.MarkFlagRequired("locale-root")

	return cmd
}
