// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"context"
	"errors"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"

	"codeberg.org/poreach/poreach/catalog"
	"codeberg.org/poreach/poreach/reach"
)

var errNoSource = errors.New("exactly one of --manifest or --packages is required")

// openCatalog locates and parses the catalog for one locale.
func openCatalog(localeRoot, lang, domain string) (*catalog.File, string, error) {
	path, err := catalog.Locate(fsys, localeRoot, lang, domain)
	if err != nil {
		return nil, "", err
	}

	log.Info().Str("path", path).Msg("Loading catalog")

	f, err := catalog.Load(fsys, path)
	if err != nil {
		return nil, "", err
	}

	return f, path, nil
}

// buildSource constructs the reachability oracle from one of the two
// mutually exclusive flags: a static YAML manifest of loaded modules, or
// a Go package pattern resolved under dir.
func buildSource(ctx context.Context, dir, manifestPath, packagePattern string) (reach.Source, error) {
	switch {
	case manifestPath != "" && packagePattern != "":
		return nil, errNoSource
	case manifestPath != "":
		src, err := reach.LoadManifest(fsys, manifestPath)
		if err != nil {
			return nil, err
		}

		log.Debug().Int("modules", src.Len()).Str("path", manifestPath).Msg("Loaded module manifest")

		return src, nil
	case packagePattern != "":
		src, err := reach.LoadPackages(ctx, dir, packagePattern)
		if err != nil {
			return nil, err
		}

		log.Debug().Int("packages", src.Len()).Str("pattern", packagePattern).Msg("Loaded package graph")

		return src, nil
	default:
		return nil, errNoSource
	}
}

// verifyMo re-parses a compiled catalog with an independent gettext
// runtime and logs how many translations it can see. A file our own
// compiler wrote but gotext cannot read is a bug worth failing on.
func verifyMo(path string) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return err
	}

	mo := gotext.NewMo()
	mo.Parse(data)

	log.Info().
		Str("path", path).
		Int("translations", len(mo.GetDomain().GetTranslations())).
		Msg("Compiled catalog verified")

	return nil
}
