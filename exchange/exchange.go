// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package exchange reads and writes the JSON interchange files: record
// arrays carrying extracted msgids out to a translation provider, and
// translation objects carrying the completed strings back in.
package exchange

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	vfs "github.com/twpayne/go-vfs"
)

var (
	// ErrInvalidJSON signals a file that is not JSON at all.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrBadShape signals structurally valid JSON whose shape the
	// interchange format does not allow.
	ErrBadShape = errors.New("unsupported value shape")
)

const fileMode = 0o644

// Record is one extracted catalog entry awaiting translation.
type Record struct {
	MsgID       string `json:"msgid"`
	MsgIDPlural string `json:"msgid_plural,omitempty"`
}

// WriteRecords writes records as an indented JSON array with a trailing
// newline so the file diffs cleanly under version control.
func WriteRecords(fsys vfs.FS, path string, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	data = append(data, '\n')

	if err := fsys.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// ReadRecords reads a record array back. Plain string elements, the shape
// older exports used, are accepted as singular records.
func ReadRecords(fsys vfs.FS, path string) ([]Record, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, path)
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: %s holds no top-level array", ErrBadShape, path)
	}

	var (
		recs     []Record
		shapeErr error
	)

	parsed.ForEach(func(_, value gjson.Result) bool {
		switch {
		case value.Type == gjson.String:
			recs = append(recs, Record{MsgID: value.String()})
		case value.IsObject():
			recs = append(recs, Record{
				MsgID:       value.Get("msgid").String(),
				MsgIDPlural: value.Get("msgid_plural").String(),
			})
		default:
			shapeErr = fmt.Errorf("%w: element %s in %s", ErrBadShape, value.Raw, path)

			return false
		}

		return true
	})

	if shapeErr != nil {
		return nil, shapeErr
	}

	return recs, nil
}
