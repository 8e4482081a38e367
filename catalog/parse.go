// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	vfs "github.com/twpayne/go-vfs"
)

// Load parses the PO file at path. A missing file wraps ErrNotFound;
// malformed input wraps ErrParse with the offending line number.
func Load(fsys vfs.FS, path string) (*File, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	return f, nil
}

// Parse decodes PO data into a File.
func Parse(data []byte) (*File, error) {
	p := parser{
		file: &File{byID: map[string]*Entry{}, byKey: map[string]*Entry{}},
	}

	for i, raw := range strings.Split(string(data), "\n") {
		if err := p.line(strings.TrimSuffix(raw, "\r")); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrParse, i+1, err)
		}
	}

	if err := p.flush(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, err)
	}

	if p.file.Header == nil {
		p.file.Header = &Entry{}
	}

	return p.file, nil
}

// parser accumulates one entry at a time. appendTo receives continuation
// string content for whichever keyword was seen last.
type parser struct {
	file *File

	cur      *Entry
	appendTo func(string)
	inMsgstr bool
}

func (p *parser) entry(obsolete bool) *Entry {
	if p.cur == nil {
		p.cur = &Entry{}
	}

	if obsolete {
		p.cur.Obsolete = true
	}

	return p.cur
}

// breakBefore flushes the current entry when a line that begins a new one
// (a comment, msgctxt, or msgid) arrives after the translation was read.
func (p *parser) breakBefore() error {
	if p.cur != nil && p.inMsgstr {
		return p.flush()
	}

	return nil
}

func (p *parser) flush() error {
	e := p.cur
	p.cur = nil
	p.appendTo = nil
	p.inMsgstr = false

	if e == nil {
		return nil
	}

	if e.MsgID == "" && e.MsgCtxt == "" && !e.Obsolete {
		if p.file.Header != nil {
			return fmt.Errorf("duplicate header entry")
		}

		p.file.Header = e

		return nil
	}

	return p.file.add(e)
}

func (p *parser) line(line string) error {
	obsolete := false

	if rest, ok := strings.CutPrefix(line, "#~"); ok {
		obsolete = true
		line = strings.TrimLeft(rest, " ")
	}

	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return p.flush()

	case obsolete && strings.HasPrefix(trimmed, "|"):
		// "#~|" previous-msgid lines of an obsolete entry.
		e := p.entry(true)
		e.Previous = append(e.Previous, strings.TrimSpace(trimmed[1:]))

		return nil

	case strings.HasPrefix(trimmed, `"`):
		if p.appendTo == nil {
			return fmt.Errorf("continuation with no preceding keyword")
		}

		s, err := unquote(trimmed)
		if err != nil {
			return err
		}

		p.appendTo(s)

		return nil

	case strings.HasPrefix(trimmed, "#"):
		if err := p.breakBefore(); err != nil {
			return err
		}

		return p.comment(trimmed)

	default:
		return p.keyword(trimmed, obsolete)
	}
}

func (p *parser) comment(line string) error {
	e := p.entry(false)

	switch {
	case strings.HasPrefix(line, "#:"):
		for _, field := range strings.Fields(line[2:]) {
			e.Occurrences = append(e.Occurrences, parseOccurrence(field))
		}

	case strings.HasPrefix(line, "#,"):
		for f := range strings.SplitSeq(line[2:], ",") {
			if f = strings.TrimSpace(f); f != "" {
				e.Flags = append(e.Flags, f)
			}
		}

	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))

	case strings.HasPrefix(line, "#|"):
		e.Previous = append(e.Previous, strings.TrimSpace(line[2:]))

	default:
		e.Comments = append(e.Comments, strings.TrimSpace(line[1:]))
	}

	return nil
}

func (p *parser) keyword(line string, obsolete bool) error {
	kw, rest, _ := strings.Cut(line, " ")

	value := ""

	if strings.TrimSpace(rest) != "" {
		var err error
		if value, err = unquote(strings.TrimSpace(rest)); err != nil {
			return err
		}
	}

	switch {
	case kw == "msgctxt":
		if err := p.breakBefore(); err != nil {
			return err
		}

		e := p.entry(obsolete)
		e.MsgCtxt = value
		p.appendTo = func(s string) { e.MsgCtxt += s }

	case kw == "msgid":
		if err := p.breakBefore(); err != nil {
			return err
		}

		e := p.entry(obsolete)
		e.MsgID = value
		p.appendTo = func(s string) { e.MsgID += s }

	case kw == "msgid_plural":
		e := p.entry(obsolete)
		e.MsgIDPlural = value
		p.appendTo = func(s string) { e.MsgIDPlural += s }

	case kw == "msgstr":
		e := p.entry(obsolete)
		e.MsgStr = value
		p.appendTo = func(s string) { e.MsgStr += s }
		p.inMsgstr = true

	case strings.HasPrefix(kw, "msgstr[") && strings.HasSuffix(kw, "]"):
		idx, err := strconv.Atoi(kw[len("msgstr[") : len(kw)-1])
		if err != nil || idx < 0 {
			return fmt.Errorf("bad plural index %q", kw)
		}

		e := p.entry(obsolete)
		if e.MsgStrPlural == nil {
			e.MsgStrPlural = map[int]string{}
		}

		e.MsgStrPlural[idx] = value
		p.appendTo = func(s string) { e.MsgStrPlural[idx] += s }
		p.inMsgstr = true

	default:
		return fmt.Errorf("unexpected keyword %q", kw)
	}

	return nil
}

// parseOccurrence splits "path:line", tolerating colons inside the path
// (Windows drive letters) by cutting at the last one. A field with no
// usable line number becomes an occurrence at line 0.
func parseOccurrence(field string) Occurrence {
	i := strings.LastIndex(field, ":")
	if i < 0 {
		return Occurrence{File: field}
	}

	n, err := strconv.Atoi(field[i+1:])
	if err != nil || n < 0 {
		return Occurrence{File: field}
	}

	return Occurrence{File: field[:i], Line: n}
}

// unquote strips the surrounding double quotes and decodes the PO escape
// set: \n \t \r \" \\ (unknown escapes pass through unchanged).
func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("malformed string %q", s)
	}

	s = s[1 : len(s)-1]

	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])

			continue
		}

		i++

		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}

	return b.String(), nil
}
