// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"strconv"
	"strings"

	vfs "github.com/twpayne/go-vfs"
)

const poFileMode = 0o644

// Save serializes the catalog back to PO form at path. The data is written
// to a temporary sibling first and moved into place, so a failed write
// leaves the previous file intact.
func Save(fsys vfs.FS, f *File, path string) error {
	tmp := path + ".tmp"

	if err := fsys.WriteFile(tmp, f.Bytes(), poFileMode); err != nil {
		return fmt.Errorf("writing catalog %s: %w", path, err)
	}

	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)

		return fmt.Errorf("writing catalog %s: %w", path, err)
	}

	return nil
}

// Bytes renders the catalog in PO form: header first, entries in order,
// obsolete entries last with "#~" prefixes.
func (f *File) Bytes() []byte {
	var b strings.Builder

	if f.Header != nil {
		writeEntry(&b, f.Header)
	}

	var obsolete []*Entry

	for _, e := range f.Entries {
		if e.Obsolete {
			obsolete = append(obsolete, e)

			continue
		}

		b.WriteString("\n")
		writeEntry(&b, e)
	}

	for _, e := range obsolete {
		b.WriteString("\n")
		writeEntry(&b, e)
	}

	return []byte(b.String())
}

func writeEntry(b *strings.Builder, e *Entry) {
	for _, c := range e.Comments {
		writeComment(b, "#", c)
	}

	for _, c := range e.ExtractedComments {
		writeComment(b, "#.", c)
	}

	if len(e.Occurrences) > 0 {
		b.WriteString("#:")

		for _, occ := range e.Occurrences {
			b.WriteString(" " + occ.File + ":" + strconv.Itoa(occ.Line))
		}

		b.WriteString("\n")
	}

	if len(e.Flags) > 0 {
		b.WriteString("#, " + strings.Join(e.Flags, ", ") + "\n")
	}

	for _, c := range e.Previous {
		prefix := "#|"
		if e.Obsolete {
			prefix = "#~|"
		}

		writeComment(b, prefix, c)
	}

	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}

	if e.MsgCtxt != "" {
		writeString(b, prefix, "msgctxt", e.MsgCtxt)
	}

	writeString(b, prefix, "msgid", e.MsgID)

	if e.MsgIDPlural != "" {
		writeString(b, prefix, "msgid_plural", e.MsgIDPlural)

		for _, i := range e.pluralIndexes() {
			writeString(b, prefix, "msgstr["+strconv.Itoa(i)+"]", e.MsgStrPlural[i])
		}

		return
	}

	writeString(b, prefix, "msgstr", e.MsgStr)
}

func writeComment(b *strings.Builder, prefix, c string) {
	if c == "" {
		b.WriteString(prefix + "\n")

		return
	}

	b.WriteString(prefix + " " + c + "\n")
}

// writeString emits a keyword line. Values with embedded newlines use the
// multi-line form gettext tools produce: an empty first string, then one
// quoted segment per line with its trailing \n kept.
func writeString(b *strings.Builder, prefix, keyword, value string) {
	segments := splitAfterNewlines(value)

	if len(segments) <= 1 {
		b.WriteString(prefix + keyword + " " + quote(value) + "\n")

		return
	}

	b.WriteString(prefix + keyword + ` ""` + "\n")

	for _, seg := range segments {
		b.WriteString(prefix + quote(seg) + "\n")
	}
}

// splitAfterNewlines cuts the value after every newline, keeping the
// newline with its segment. "a\nb\n" becomes ["a\n", "b\n"].
func splitAfterNewlines(s string) []string {
	var out []string

	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 || i == len(s)-1 {
			if s != "" {
				out = append(out, s)
			}

			return out
		}

		out = append(out, s[:i+1])
		s = s[i+1:]
	}
}

// quote encodes a value as one PO quoted string with the standard escapes.
func quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(s[i])
		}
	}

	b.WriteByte('"')

	return b.String()
}
