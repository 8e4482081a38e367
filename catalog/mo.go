// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	vfs "github.com/twpayne/go-vfs"
)

// moMagic is the little-endian MO file magic number.
const moMagic = 0x950412de

// moHeader mirrors the fixed-size MO file header.
type moHeader struct {
	Magic          uint32
	Version        uint32
	NumStrings     uint32
	OrigTabOffset  uint32
	TransTabOffset uint32
	HashTabSize    uint32
	HashTabOffset  uint32
}

// MoSibling returns the compiled binary path for a PO path, with the
// extension swapped.
func MoSibling(poPath string) string {
	if strings.HasSuffix(poPath, ".po") {
		return strings.TrimSuffix(poPath, ".po") + ".mo"
	}

	return poPath + ".mo"
}

// CompileMo writes the catalog's binary message lookup file at path.
//
// The output matches what msgfmt produces minus the optional hash table:
// the header entry first, translated non-obsolete entries sorted by their
// byte key, plural translations NUL-joined, msgctxt joined to msgid with
// EOT. Fuzzy and untranslated entries are omitted.
func CompileMo(fsys vfs.FS, f *File, path string) error {
	tmp := path + ".tmp"

	if err := fsys.WriteFile(tmp, f.MoBytes(), poFileMode); err != nil {
		return fmt.Errorf("writing binary catalog %s: %w", path, err)
	}

	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)

		return fmt.Errorf("writing binary catalog %s: %w", path, err)
	}

	return nil
}

// MoBytes renders the catalog in MO form.
func (f *File) MoBytes() []byte {
	type moEntry struct {
		id  string
		str string
	}

	entries := make([]moEntry, 0, len(f.Entries)+1)

	for _, e := range f.Entries {
		if !e.Translated() {
			continue
		}

		id := e.key()
		str := e.MsgStr

		if e.MsgIDPlural != "" {
			id += "\x00" + e.MsgIDPlural

			forms := make([]string, 0, len(e.MsgStrPlural))
			for _, i := range e.pluralIndexes() {
				forms = append(forms, e.MsgStrPlural[i])
			}

			str = strings.Join(forms, "\x00")
		}

		entries = append(entries, moEntry{id: id, str: str})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	// The metadata entry has the empty msgid and sorts first.
	header := moEntry{str: ""}
	if f.Header != nil {
		header.str = f.Header.MsgStr
	}

	entries = append([]moEntry{header}, entries...)

	n := uint32(len(entries))
	keyStart := uint32(7*4 + 16*n)

	var ids, strs bytes.Buffer

	type tableEntry struct{ length, offset uint32 }

	origTab := make([]tableEntry, 0, n)
	transTab := make([]tableEntry, 0, n)

	for _, e := range entries {
		origTab = append(origTab, tableEntry{length: uint32(len(e.id)), offset: uint32(ids.Len())})
		ids.WriteString(e.id)
		ids.WriteByte(0)

		transTab = append(transTab, tableEntry{length: uint32(len(e.str)), offset: uint32(strs.Len())})
		strs.WriteString(e.str)
		strs.WriteByte(0)
	}

	valueStart := keyStart + uint32(ids.Len())

	var out bytes.Buffer

	le := binary.LittleEndian

	hdr := moHeader{
		Magic:          moMagic,
		Version:        0,
		NumStrings:     n,
		OrigTabOffset:  7 * 4,
		TransTabOffset: 7*4 + 8*n,
		HashTabSize:    0,
		HashTabOffset:  keyStart,
	}

	_ = binary.Write(&out, le, hdr)

	for _, t := range origTab {
		_ = binary.Write(&out, le, t.length)
		_ = binary.Write(&out, le, keyStart+t.offset)
	}

	for _, t := range transTab {
		_ = binary.Write(&out, le, t.length)
		_ = binary.Write(&out, le, valueStart+t.offset)
	}

	out.Write(ids.Bytes())
	out.Write(strs.Bytes())

	return out.Bytes()
}
