// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"errors"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codeberg.org/poreach/poreach/catalog"
)

var errNothingToCompile = errors.New("pass catalog paths, or --locale-root with --all")

func newCompileCmd() *cobra.Command {
	var (
		localeRoot string
		domain     string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "compile [catalog.po ...]",
		Short: "Compile catalogs to their binary MO form",
		Long: "compile turns PO catalogs into MO lookup tables, one sibling file each. With\n" +
			"--all every locale under the root is compiled concurrently.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args

			if all {
				if localeRoot == "" {
					return errNothingToCompile
				}

				found, err := findCatalogs(localeRoot, orDefault(domain, cfg.Domain))
				if err != nil {
					return err
				}

				paths = append(paths, found...)
			}

			if len(paths) == 0 {
				return errNothingToCompile
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.NumCPU())

			for _, path := range paths {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}

					return compileOne(path)
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&localeRoot, "locale-root", "l", "", "Locale directory holding <lang>/LC_MESSAGES")
	cmd.Flags().StringVar(&domain, "domain", "", "Gettext domain")
	cmd.Flags().BoolVar(&all, "all", false, "Compile every locale under the root")

	return cmd
}

// findCatalogs lists <root>/<lang>/LC_MESSAGES/<domain>.po for every
// locale directory that has one.
func findCatalogs(localeRoot, domain string) ([]string, error) {
	infos, err := fsys.ReadDir(localeRoot)
	if err != nil {
		return nil, err
	}

	var paths []string

	for _, info := range infos {
		if !info.IsDir() {
			continue
		}

		path := filepath.Join(localeRoot, info.Name(), "LC_MESSAGES", domain+".po")
		if _, err := fsys.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	return paths, nil
}

func compileOne(poPath string) error {
	f, err := catalog.Load(fsys, poPath)
	if err != nil {
		return err
	}

	moPath := catalog.MoSibling(poPath)

	if err := catalog.CompileMo(fsys, f, moPath); err != nil {
		return err
	}

	log.Info().Str("po", poPath).Str("mo", moPath).Msg("Compiled catalog")

	return verifyMo(moPath)
}
