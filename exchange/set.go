// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	vfs "github.com/twpayne/go-vfs"
)

// TranslationSet accumulates provider output keyed by msgid, preserving
// insertion order so successive saves of the same run diff minimally.
// Values are kept as raw JSON: a quoted string for singular responses, a
// whole response object for plural ones. The saved file is exactly the
// shape ReadTranslations consumes.
type TranslationSet struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewTranslationSet returns an empty set.
func NewTranslationSet() *TranslationSet {
	return &TranslationSet{values: map[string]json.RawMessage{}}
}

// LoadTranslationSet reads a previously saved set so an interrupted run
// can resume. A missing file is not an error, it yields an empty set.
func LoadTranslationSet(fsys vfs.FS, path string) (*TranslationSet, error) {
	s := NewTranslationSet()

	data, err := fsys.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, path)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: %s holds no top-level object", ErrBadShape, path)
	}

	parsed.ForEach(func(key, value gjson.Result) bool {
		s.Set(key.String(), json.RawMessage(value.Raw))

		return true
	})

	return s, nil
}

// Has reports whether a msgid is already translated.
func (s *TranslationSet) Has(msgid string) bool {
	_, ok := s.values[msgid]

	return ok
}

// Set stores a raw JSON value under a msgid, keeping the first insertion
// position on repeats.
func (s *TranslationSet) Set(msgid string, value json.RawMessage) {
	if _, ok := s.values[msgid]; !ok {
		s.keys = append(s.keys, msgid)
	}

	s.values[msgid] = value
}

// Len returns the number of stored translations.
func (s *TranslationSet) Len() int {
	return len(s.keys)
}

// Save writes the set as an indented JSON object in insertion order.
func (s *TranslationSet) Save(fsys vfs.FS, path string) error {
	var compact bytes.Buffer

	compact.WriteByte('{')

	for i, key := range s.keys {
		if i > 0 {
			compact.WriteByte(',')
		}

		name, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("encoding key %q: %w", key, err)
		}

		compact.Write(name)
		compact.WriteByte(':')
		compact.Write(s.values[key])
	}

	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	out.WriteByte('\n')

	if err := fsys.WriteFile(path, out.Bytes(), fileMode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
