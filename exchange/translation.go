// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package exchange

import (
	"fmt"

	"github.com/tidwall/gjson"
	vfs "github.com/twpayne/go-vfs"
)

// Translation is one completed translation keyed by msgid. Two input
// shapes produce it: a bare string value (the legacy form) and an object
// whose msgstr field holds either a string or an array of plural forms.
type Translation struct {
	MsgID string

	// Legacy marks the bare-string form. It decides check ordering
	// during a merge: legacy values drop empty strings before the
	// catalog is even consulted, structured ones afterwards.
	Legacy bool

	// HasMsgStr is false when a structured value carried no msgstr
	// field at all. Such entries survive decoding so the merge can
	// count and report them.
	HasMsgStr bool

	Single string
	Plural []string
}

// IsPlural reports whether the translation carries plural forms.
func (t *Translation) IsPlural() bool {
	return t.Plural != nil
}

// ReadTranslations decodes one translation file into input order.
// The top level must be a JSON object; any value that is neither a string
// nor an object fails with ErrBadShape naming the offending key.
func ReadTranslations(fsys vfs.FS, path string) ([]Translation, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, path)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: %s holds no top-level object", ErrBadShape, path)
	}

	var (
		ts       []Translation
		shapeErr error
	)

	parsed.ForEach(func(key, value gjson.Result) bool {
		t := Translation{MsgID: key.String()}

		switch {
		case value.Type == gjson.String:
			t.Legacy = true
			t.HasMsgStr = true
			t.Single = value.String()
		case value.IsObject():
			msgstr := value.Get("msgstr")

			switch {
			case !msgstr.Exists():
				// Decoded as-is; the merge reports it.
			case msgstr.IsArray():
				t.HasMsgStr = true
				t.Plural = []string{}

				msgstr.ForEach(func(_, form gjson.Result) bool {
					t.Plural = append(t.Plural, form.String())

					return true
				})
			default:
				t.HasMsgStr = true
				t.Single = msgstr.String()
			}
		default:
			shapeErr = fmt.Errorf("%w: key %q in %s", ErrBadShape, key.String(), path)

			return false
		}

		ts = append(ts, t)

		return true
	})

	if shapeErr != nil {
		return nil, shapeErr
	}

	return ts, nil
}

// Merge flattens translation lists into one, keeping first-seen order.
// A msgid appearing again, in the same list or a later one, replaces the
// earlier value in place, so later input files win without reordering.
func Merge(lists ...[]Translation) []Translation {
	var out []Translation

	index := map[string]int{}

	for _, list := range lists {
		for _, t := range list {
			if at, ok := index[t.MsgID]; ok {
				out[at] = t

				continue
			}

			index[t.MsgID] = len(out)
			out = append(out, t)
		}
	}

	return out
}
