// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package extract selects the untranslated catalog entries a reachability
// strategy can vouch for and turns them into interchange records.
package extract

import (
	"github.com/rs/zerolog/log"

	"codeberg.org/poreach/poreach/catalog"
	"codeberg.org/poreach/poreach/exchange"
	"codeberg.org/poreach/poreach/reach"
)

// Run walks the catalog in order and collects every untranslated,
// reachable entry. Duplicate msgids are dropped silently, first hit wins,
// so the output order is the catalog's own.
func Run(f *catalog.File, s reach.Strategy) []exchange.Record {
	recs := []exchange.Record{}
	seen := map[string]bool{}

	for _, e := range f.Entries {
		if e.Obsolete || e.Translated() {
			continue
		}

		if !s.Reachable(e) {
			continue
		}

		if seen[e.MsgID] {
			continue
		}

		seen[e.MsgID] = true
		recs = append(recs, exchange.Record{MsgID: e.MsgID, MsgIDPlural: e.MsgIDPlural})

		logFound(e)
	}

	return recs
}

// RunKeys walks the dotted keymap instead of the catalog: each resolvable
// key whose string sits untranslated in the catalog yields one record. The
// catalog entry supplies the plural form when it declares one. Keys are
// visited in sorted order so repeated runs emit identical files.
func RunKeys(f *catalog.File, d *reach.DottedSymbol) []exchange.Record {
	recs := []exchange.Record{}
	seen := map[string]bool{}

	for _, k := range d.SortedKeys() {
		if !d.Resolves(k) {
			continue
		}

		msgid := d.Keys[k]

		e := f.Find(msgid)
		if e == nil || e.Translated() {
			continue
		}

		if seen[msgid] {
			continue
		}

		seen[msgid] = true
		recs = append(recs, exchange.Record{MsgID: msgid, MsgIDPlural: e.MsgIDPlural})

		logFound(e)
	}

	return recs
}

func logFound(e *catalog.Entry) {
	if e.MsgIDPlural != "" {
		log.Info().
			Str("msgid", preview(e.MsgID, 40)).
			Str("plural", preview(e.MsgIDPlural, 40)).
			Msg("Found untranslated plural entry")

		return
	}

	log.Info().Str("msgid", preview(e.MsgID, 50)).Msg("Found untranslated entry")
}

// preview shortens a string to n runes for log lines.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "..."
}
