// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	vfs "github.com/twpayne/go-vfs"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/poreach/poreach/exchange"
)

// DefaultBatchSize is the number of records sent per request when the
// translator does not set one.
const DefaultBatchSize = 200

const dumpFileMode = 0o644

const pluralPromptFormat = `Translate the following English text strings to %s.
Return ONLY a valid JSON array matching the input structure.

For entries with both "msgid" (singular) and "msgid_plural" (plural), return an object with:
- "msgid": the original English singular form (keep as-is)
- "msgid_plural": the original English plural form (keep as-is)
- "msgstr": array of %s translations for the plural forms (usually 2 elements: [singular, plural])

For entries with only "msgid", return an object with:
- "msgid": the original English text (keep as-is)
- "msgstr": the %s translation as a string

Do not include any markdown formatting, code blocks, or explanations - just the raw JSON array.

IMPORTANT: Preserve all format specifiers exactly as they appear in the original text:
- Keep %%s, %%d, %%i, %%f and named forms like %%(name)s unchanged
- Keep {} curly braces and {0}, {1}, {name} placeholders unchanged
- Keep the position and order of format specifiers in the translated text

Strings to translate:
%s

Return the translations as a JSON array.`

const objectPromptFormat = `Translate the following English text strings to %s.
Return ONLY a valid JSON object where each English string is a key and its %s translation is the value.
Do not include any markdown formatting, code blocks, or explanations - just the raw JSON object.

IMPORTANT: Preserve all format specifiers exactly as they appear in the original text:
- Keep %%s, %%d, %%i, %%f and named forms like %%(name)s unchanged
- Keep {} curly braces and {0}, {1}, {name} placeholders unchanged
- Keep the position and order of format specifiers in the translated text

Strings to translate:
%s

Return the translations as a JSON object.`

// Translator drives batched translation of extracted records.
type Translator struct {
	Client *Client

	// Lang is the target language.
	Lang language.Tag

	// BatchSize is the number of records per request, DefaultBatchSize
	// when zero.
	BatchSize int
}

// TranslateAll runs every record through the provider in batches, saving
// the accumulated output file after each one. An existing output file is
// loaded first so interrupted runs resume where they stopped. A failed
// batch is logged and dumped for inspection, then the run moves on; only
// persistence failures and context cancellation abort it.
func (tr *Translator) TranslateAll(ctx context.Context, fsys vfs.FS, recs []exchange.Record, outPath string) error {
	set, err := exchange.LoadTranslationSet(fsys, outPath)
	if err != nil {
		return err
	}

	if set.Len() > 0 {
		log.Info().
			Int("translations", set.Len()).
			Str("path", outPath).
			Msg("Resuming from existing output file")
	}

	batchSize := tr.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	langName := languageName(tr.Lang)
	batches := (len(recs) + batchSize - 1) / batchSize

	for i := 0; i < len(recs); i += batchSize {
		number := i/batchSize + 1
		batch := recs[i:min(i+batchSize, len(recs))]

		todo := make([]exchange.Record, 0, len(batch))

		for _, r := range batch {
			if r.MsgID != "" && !set.Has(r.MsgID) {
				todo = append(todo, r)
			}
		}

		if len(todo) == 0 {
			log.Info().Int("batch", number).Int("batches", batches).Msg("Batch already translated, skipping")

			continue
		}

		log.Info().
			Int("batch", number).
			Int("batches", batches).
			Int("entries", len(todo)).
			Msg("Translating batch")

		prompt, err := buildPrompt(langName, todo)
		if err != nil {
			return err
		}

		raw, err := tr.Client.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			log.Warn().Err(err).Int("batch", number).Msg("Batch failed, continuing with the next one")

			continue
		}

		if err := mergeResponse(set, stripFences(raw)); err != nil {
			log.Warn().Err(err).Int("batch", number).Msg("Could not parse batch response, continuing with the next one")
			dumpResponse(fsys, outPath, number, raw)

			continue
		}

		if err := set.Save(fsys, outPath); err != nil {
			return err
		}

		log.Info().Int("batch", number).Int("translations", set.Len()).Msg("Batch completed")
	}

	log.Info().
		Int("translations", set.Len()).
		Str("path", outPath).
		Msg("Translation complete")

	return nil
}

// buildPrompt renders the batch into the plural-aware array prompt when
// any record declares a plural form, and into the plain object prompt
// otherwise.
func buildPrompt(langName string, recs []exchange.Record) (string, error) {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding batch: %w", err)
	}

	for _, r := range recs {
		if r.MsgIDPlural != "" {
			return fmt.Sprintf(pluralPromptFormat, langName, langName, langName, data), nil
		}
	}

	return fmt.Sprintf(objectPromptFormat, langName, langName, data), nil
}

// languageName renders a tag as "English name (tag)", the form the
// prompts name the target language in.
func languageName(tag language.Tag) string {
	name := display.English.Languages().Name(tag)
	if name == "" {
		return tag.String()
	}

	return fmt.Sprintf("%s (%s)", name, tag)
}

// stripFences removes a Markdown code fence around a response, with or
// without a json language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	parts := strings.SplitN(text, "```", 3)
	if len(parts) < 2 {
		return text
	}

	inner := strings.TrimPrefix(parts[1], "json")

	return strings.TrimSpace(inner)
}

// mergeResponse folds one parsed batch into the set. Object responses map
// msgid to translation directly; array responses carry one item per
// record and are stored whole under their msgid, keeping the plural
// payload intact. Array items without a msgid are warned about and
// dropped.
func mergeResponse(set *exchange.TranslationSet, text string) error {
	if !gjson.Valid(text) {
		return fmt.Errorf("%w: %s", errInvalidJSON, firstLine(text))
	}

	parsed := gjson.Parse(text)

	switch {
	case parsed.IsObject():
		parsed.ForEach(func(key, value gjson.Result) bool {
			set.Set(key.String(), json.RawMessage(value.Raw))

			return true
		})
	case parsed.IsArray():
		parsed.ForEach(func(_, item gjson.Result) bool {
			msgid := item.Get("msgid").String()
			if !item.IsObject() || msgid == "" {
				log.Warn().Str("item", firstLine(item.Raw)).Msg("Unexpected translation item in response")

				return true
			}

			set.Set(msgid, json.RawMessage(item.Raw))

			return true
		})
	default:
		return fmt.Errorf("%w: top level is neither object nor array", errInvalidJSON)
	}

	return nil
}

// dumpResponse writes a failed batch's raw response next to the output
// file so the run can continue without losing it.
func dumpResponse(fsys vfs.FS, outPath string, number int, text string) {
	path := filepath.Join(filepath.Dir(outPath), fmt.Sprintf("batch%d_response.txt", number))

	if err := fsys.WriteFile(path, []byte(text), dumpFileMode); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to write response dump")

		return
	}

	log.Warn().Str("path", path).Msg("Raw response dumped for inspection")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}

	const limit = 120

	runes := []rune(s)
	if len(runes) > limit {
		s = string(runes[:limit]) + "..."
	}

	return s
}
