// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"codeberg.org/poreach/poreach/exchange"
	"codeberg.org/poreach/poreach/provider"
)

var errNoAPIKey = errors.New("GEMINI_API_KEY is not set")

func newTranslateCmd() *cobra.Command {
	var (
		input     string
		output    string
		lang      string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Machine-translate an extracted exchange file",
		Long: "translate sends the records of an extraction output file to the Gemini API in\n" +
			"batches and accumulates the answers as a merge-ready translation file. The\n" +
			"output is saved after every batch, so an interrupted run resumes where it\n" +
			"stopped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				return errNoAPIKey
			}

			target := orDefault(lang, cfg.Lang)

			tag, err := language.Parse(target)
			if err != nil {
				return fmt.Errorf("parsing target language %q: %w", target, err)
			}

			recs, err := exchange.ReadRecords(fsys, input)
			if err != nil {
				return err
			}

			log.Info().
				Int("records", len(recs)).
				Str("lang", tag.String()).
				Str("model", cfg.Provider.Model).
				Msg("Starting translation")

			client := provider.New(apiKey,
				provider.WithModel(cfg.Provider.Model),
				provider.WithRequestsPerMinute(cfg.Provider.RequestsPerMinute),
			)

			if batchSize <= 0 {
				batchSize = cfg.Provider.BatchSize
			}

			tr := &provider.Translator{Client: client, Lang: tag, BatchSize: batchSize}

			return tr.TranslateAll(cmd.Context(), fsys, recs, output)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Extraction output file to translate")
	cmd.Flags().StringVarP(&output, "output", "o", "translated.json", "Translation output file")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language as a BCP 47 tag")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "n", 0, "Records per request")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}
