// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package reach

import (
	"fmt"

	"github.com/goccy/go-yaml"
	vfs "github.com/twpayne/go-vfs"
)

// Static is a Source backed by an explicit set of dotted names, each with
// an optional attribute tree. It stands in for a live loaded-module
// registry: callers that know the loaded set up front build one from a
// manifest file, and tests build one from a literal map.
type Static struct {
	modules map[string]staticObject
}

// NewStatic builds a Static source. Map values describe the attribute tree
// below each name: nested map[string]any values traverse further, anything
// else (including nil) is a leaf.
func NewStatic(modules map[string]any) *Static {
	s := &Static{modules: make(map[string]staticObject, len(modules))}

	for name, tree := range modules {
		s.modules[name] = asStaticObject(tree)
	}

	return s
}

// Resolve reports whether the exact dotted name was declared.
func (s *Static) Resolve(name string) (Object, bool) {
	obj, ok := s.modules[name]

	return obj, ok
}

// Len returns how many dotted names the source declares.
func (s *Static) Len() int {
	return len(s.modules)
}

type staticObject map[string]any

func (o staticObject) Attr(name string) (Object, bool) {
	v, ok := o[name]
	if !ok {
		return nil, false
	}

	return asStaticObject(v), true
}

func asStaticObject(v any) staticObject {
	switch m := v.(type) {
	case map[string]any:
		return staticObject(m)
	default:
		// Leaf attributes resolve but expose nothing further.
		return staticObject(nil)
	}
}

// manifest is the YAML shape of a loaded-module manifest:
//
//	modules:
//	  lino: {}
//	  lino.core.actions:
//	    save_label: {}
type manifest struct {
	Modules map[string]any `yaml:"modules"`
}

// LoadManifest reads a loaded-module manifest and builds a Static source
// from it.
func LoadManifest(fsys vfs.FS, path string) (*Static, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}

	if len(m.Modules) == 0 {
		return nil, fmt.Errorf("manifest %s declares no modules", path)
	}

	return NewStatic(m.Modules), nil
}

// LoadKeymap reads a YAML mapping of dotted keys to their raw string
// values, the context the dotted-symbol strategy works from.
func LoadKeymap(fsys vfs.FS, path string) (map[string]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keymap %s: %w", path, err)
	}

	keys := map[string]string{}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("decoding keymap %s: %w", path, err)
	}

	return keys, nil
}
