// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package reach

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	vfs "github.com/twpayne/go-vfs"

	"codeberg.org/poreach/poreach/catalog"
)

// DottedSymbol marks entries reachable when a dotted key resolves against
// the source and the key's raw string value matches the entry's msgid.
type DottedSymbol struct {
	// Keys maps dotted key names to the raw strings they carry.
	Keys map[string]string

	Source Source
}

// SortedKeys returns the dotted keys in deterministic order.
func (d *DottedSymbol) SortedKeys() []string {
	keys := make([]string, 0, len(d.Keys))
	for k := range d.Keys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Reachable reports whether any resolvable dotted key carries the entry's
// msgid as its value.
func (d *DottedSymbol) Reachable(e *catalog.Entry) bool {
	for _, k := range d.SortedKeys() {
		if d.Keys[k] != e.MsgID {
			continue
		}

		if d.Resolves(k) {
			return true
		}
	}

	return false
}

// Resolves reports whether one dotted key reaches a live object.
func (d *DottedSymbol) Resolves(key string) bool {
	_, ok := resolveForward(d.Source, key)

	return ok
}

// ModulePath marks entries reachable when any occurrence's source file
// maps to a dotted module name the source knows, either exactly or as an
// attribute walk below the longest known prefix.
type ModulePath struct {
	root   string
	exts   []string
	source Source
	fsys   vfs.FS
}

// NewModulePath builds the strategy. root is the directory occurrence
// paths are relative to; it must exist, otherwise ErrNoPackageRoot is
// returned. exts lists the source extensions stripped during module-name
// conversion, ".py" when empty.
func NewModulePath(fsys vfs.FS, root string, exts []string, src Source) (*ModulePath, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: no root directory given", ErrNoPackageRoot)
	}

	info, err := fsys.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoPackageRoot, root)
	}

	if len(exts) == 0 {
		exts = []string{".py"}
	}

	return &ModulePath{root: root, exts: exts, source: src, fsys: fsys}, nil
}

// Reachable checks occurrences in order and stops at the first one whose
// module resolves. Occurrences whose file is missing are skipped, never
// fatal.
func (m *ModulePath) Reachable(e *catalog.Entry) bool {
	for _, occ := range e.Occurrences {
		path := occ.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.root, path)
		}

		if _, err := m.fsys.Stat(path); err != nil {
			log.Debug().Str("file", path).Msg("Occurrence file does not exist, skipping")

			continue
		}

		name := m.moduleName(path)

		log.Debug().Str("file", occ.File).Str("module", name).Msg("Resolved occurrence to module name")

		if resolveModule(m.source, name) {
			return true
		}
	}

	return false
}

// moduleName converts an occurrence file path to a dotted module name
// relative to the root. Paths outside the root fall back to the bare file
// stem, a best-effort guess kept because a name collision is still a
// better signal than dropping the occurrence.
func (m *ModulePath) moduleName(path string) string {
	for _, ext := range m.exts {
		if strings.HasSuffix(path, ext) {
			path = strings.TrimSuffix(path, ext)

			break
		}
	}

	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		base := filepath.Base(path)

		return strings.TrimSuffix(base, filepath.Ext(base))
	}

	name := strings.ReplaceAll(rel, "/", ".")

	return strings.ReplaceAll(name, "\\", ".")
}

// TemplateSource marks entries reachable when any occurrence path ends
// with a template-file suffix. No external state is consulted.
type TemplateSource struct {
	// Suffixes to accept; ".html" when empty.
	Suffixes []string
}

// Reachable reports whether any occurrence references a template file.
func (t *TemplateSource) Reachable(e *catalog.Entry) bool {
	suffixes := t.Suffixes
	if len(suffixes) == 0 {
		suffixes = []string{".html"}
	}

	for _, occ := range e.Occurrences {
		for _, suffix := range suffixes {
			if strings.HasSuffix(occ.File, suffix) {
				return true
			}
		}
	}

	return false
}
