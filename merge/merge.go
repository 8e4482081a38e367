// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package merge applies completed translations to a catalog and persists
// the result as both PO text and compiled MO.
package merge

import (
	"strings"

	"github.com/rs/zerolog/log"
	vfs "github.com/twpayne/go-vfs"

	"codeberg.org/poreach/poreach/catalog"
	"codeberg.org/poreach/poreach/exchange"
)

// Stats counts what happened to each applied translation.
type Stats struct {
	// Updated counts entries whose msgstr actually changed.
	Updated int

	// Skipped counts empty values, plural/singular mismatches and
	// structured values without a msgstr field.
	Skipped int

	// NotFound counts msgids absent from the catalog.
	NotFound int
}

// Run applies translations, then persists the catalog as PO text and a
// compiled MO sibling. Both files are written even when nothing changed,
// so a run always leaves the pair consistent.
func Run(fsys vfs.FS, f *catalog.File, poPath string, ts []exchange.Translation) (Stats, error) {
	st := Apply(f, ts)

	log.Info().Str("path", poPath).Msg("Saving catalog")

	if err := catalog.Save(fsys, f, poPath); err != nil {
		return st, err
	}

	moPath := catalog.MoSibling(poPath)

	log.Info().Str("path", moPath).Msg("Compiling catalog")

	if err := catalog.CompileMo(fsys, f, moPath); err != nil {
		return st, err
	}

	log.Info().
		Int("translations", len(ts)).
		Int("updated", st.Updated).
		Int("skipped", st.Skipped).
		Int("not_found", st.NotFound).
		Msg("Merge complete")

	return st, nil
}

// Apply merges translations into the catalog in input order and reports
// what changed. A value identical to what the catalog already holds is
// neither an update nor a skip; it counts nowhere.
func Apply(f *catalog.File, ts []exchange.Translation) Stats {
	var st Stats

	for i := range ts {
		t := &ts[i]

		// The legacy bare-string form drops empty values before the
		// catalog is consulted, so an empty value for an unknown msgid
		// counts as skipped, not as missing.
		if t.Legacy && strings.TrimSpace(t.Single) == "" {
			st.Skipped++

			continue
		}

		// One record covers every msgctxt variant of its msgid; a run
		// that left a variant behind would re-extract the same string
		// forever, since extraction dedups by msgid.
		entries := f.FindAll(t.MsgID)
		if len(entries) == 0 {
			st.NotFound++
			log.Warn().Str("msgid", preview(t.MsgID, 50)).Msg("msgid not found in catalog")

			continue
		}

		switch {
		case !t.HasMsgStr:
			st.Skipped++
			log.Warn().Str("msgid", preview(t.MsgID, 50)).Msg("Translation value missing msgstr field")
		case t.IsPlural():
			applyPlural(entries, t, &st)
		default:
			applySingular(entries, t, &st)
		}
	}

	return st
}

// applySingular sets the msgstr on every entry whose current value
// differs. However many variants change, the record counts as one update;
// when every variant already holds the value it counts nowhere.
func applySingular(entries []*catalog.Entry, t *exchange.Translation, st *Stats) {
	if strings.TrimSpace(t.Single) == "" {
		st.Skipped++

		return
	}

	updated := false

	for _, e := range entries {
		if e.MsgStr == t.Single {
			continue
		}

		e.MsgStr = t.Single
		e.SetFuzzy(false)
		updated = true
	}

	if !updated {
		return
	}

	st.Updated++

	log.Info().
		Str("msgid", preview(t.MsgID, 50)).
		Str("msgstr", preview(t.Single, 50)).
		Msg("Updated entry")
}

// applyPlural overwrites the plural slots of every entry with a stale
// form. The record counts as one update when any variant changed, and as
// skipped when no variant declares a plural at all.
func applyPlural(entries []*catalog.Entry, t *exchange.Translation, st *Stats) {
	all := true

	for _, form := range t.Plural {
		if strings.TrimSpace(form) != "" {
			all = false

			break
		}
	}

	if all {
		st.Skipped++

		return
	}

	var updated, mismatched int

	for _, e := range entries {
		if e.MsgIDPlural == "" {
			mismatched++
			log.Warn().Str("msgid", preview(t.MsgID, 50)).Msg("Translation has plural forms but the entry does not")

			continue
		}

		if !pluralStale(e, t.Plural) {
			continue
		}

		if e.MsgStrPlural == nil {
			e.MsgStrPlural = map[int]string{}
		}

		for idx, form := range t.Plural {
			e.MsgStrPlural[idx] = form
		}

		e.SetFuzzy(false)
		updated++
	}

	switch {
	case updated > 0:
		st.Updated++

		log.Info().
			Str("msgid", preview(t.MsgID, 30)).
			Str("msgstr", pluralPreview(t.Plural)).
			Msg("Updated plural entry")
	case mismatched == len(entries):
		st.Skipped++
	}
}

// pluralStale reports whether any supplied index is missing from or
// different in the entry. One stale index rewrites the whole form.
func pluralStale(e *catalog.Entry, forms []string) bool {
	for idx, form := range forms {
		current, ok := e.MsgStrPlural[idx]
		if !ok || current != form {
			return true
		}
	}

	return false
}

func pluralPreview(forms []string) string {
	parts := make([]string, len(forms))
	for i, form := range forms {
		parts[i] = preview(form, 30)
	}

	return strings.Join(parts, " / ")
}

// preview shortens a string to n runes for log lines.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "..."
}
