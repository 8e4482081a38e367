// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	vfs "github.com/twpayne/go-vfs"
	"golang.org/x/text/language"
)

// DefaultDomain is the gettext domain assumed when none is configured.
const DefaultDomain = "django"

// Locate resolves the catalog path <root>/<lang>/LC_MESSAGES/<domain>.po.
//
// Locale directories are spelled inconsistently in the wild (pt_BR, pt-BR),
// so when the exact lang directory is missing the underscore/hyphen swap
// and the canonical BCP 47 spelling are tried before giving up with
// ErrNotFound.
func Locate(fsys vfs.FS, localeRoot, lang, domain string) (string, error) {
	if domain == "" {
		domain = DefaultDomain
	}

	candidates := localeCandidates(lang)

	for _, cand := range candidates {
		path := filepath.Join(localeRoot, cand, "LC_MESSAGES", domain+".po")
		if _, err := fsys.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: no %s.po under %s for %s (tried %s)",
		ErrNotFound, domain, localeRoot, lang, strings.Join(candidates, ", "))
}

// localeCandidates returns directory names to try for a language code, in
// order: as given, separator swap, then the canonical tag spellings.
func localeCandidates(lang string) []string {
	seen := map[string]bool{}

	var out []string

	push := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	push(lang)
	push(strings.ReplaceAll(lang, "_", "-"))
	push(strings.ReplaceAll(lang, "-", "_"))

	if tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-")); err == nil {
		canonical := tag.String()
		push(canonical)
		push(strings.ReplaceAll(canonical, "-", "_"))
	}

	return out
}
