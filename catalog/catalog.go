// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package catalog models gettext PO catalogs: parsing, serialization,
// exact msgid lookup, and compilation to the binary MO form.
package catalog

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound reports a catalog file that does not exist.
	ErrNotFound = errors.New("catalog not found")

	// ErrParse reports malformed catalog input.
	ErrParse = errors.New("catalog parse error")
)

// fuzzyFlag is the flag string gettext uses for unreviewed translations.
const fuzzyFlag = "fuzzy"

// Occurrence is one source-location hint recorded by the extraction tooling
// that produced the catalog, from a "#: file:line" comment.
type Occurrence struct {
	File string
	Line int
}

// Entry is one translatable unit within a catalog.
//
// MsgID is immutable once parsed. MsgStr is meaningful only when
// MsgIDPlural is empty; MsgStrPlural only when it is not.
type Entry struct {
	MsgCtxt     string
	MsgID       string
	MsgIDPlural string

	MsgStr       string
	MsgStrPlural map[int]string

	Occurrences       []Occurrence
	Comments          []string // "# " translator comments
	ExtractedComments []string // "#. " comments
	Flags             []string // "#, " comma-separated flags
	Previous          []string // "#| " previous-msgid lines, kept verbatim

	Obsolete bool
}

// Fuzzy reports whether the entry carries the fuzzy flag.
func (e *Entry) Fuzzy() bool {
	for _, f := range e.Flags {
		if f == fuzzyFlag {
			return true
		}
	}

	return false
}

// SetFuzzy adds or removes the fuzzy flag.
func (e *Entry) SetFuzzy(v bool) {
	if v == e.Fuzzy() {
		return
	}

	if v {
		e.Flags = append(e.Flags, fuzzyFlag)

		return
	}

	flags := e.Flags[:0]

	for _, f := range e.Flags {
		if f != fuzzyFlag {
			flags = append(flags, f)
		}
	}

	e.Flags = flags
}

// Translated reports whether the entry already carries a usable translation.
// Fuzzy and obsolete entries are never considered translated. A plural entry
// is translated only when every present plural slot is non-empty.
func (e *Entry) Translated() bool {
	if e.Obsolete || e.Fuzzy() {
		return false
	}

	if e.MsgIDPlural != "" {
		if len(e.MsgStrPlural) == 0 {
			return false
		}

		for _, s := range e.MsgStrPlural {
			if s == "" {
				return false
			}
		}

		return true
	}

	return e.MsgStr != ""
}

// pluralIndexes returns the entry's plural indexes in ascending order.
func (e *Entry) pluralIndexes() []int {
	idxs := make([]int, 0, len(e.MsgStrPlural))
	for i := range e.MsgStrPlural {
		idxs = append(idxs, i)
	}

	sort.Ints(idxs)

	return idxs
}

// key is the gettext identity of the entry: msgctxt joined to msgid with EOT.
func (e *Entry) key() string {
	if e.MsgCtxt != "" {
		return e.MsgCtxt + "\x04" + e.MsgID
	}

	return e.MsgID
}

// File is an ordered collection of entries parsed from one PO file.
//
// The header entry (msgid "") is kept apart from Entries and is written
// back first on Save. Lookups are exact-string and case-sensitive.
type File struct {
	Header  *Entry
	Entries []*Entry

	byID  map[string]*Entry
	byKey map[string]*Entry
}

// NewFile returns an empty catalog with a default header entry.
func NewFile() *File {
	return &File{
		Header: &Entry{MsgStr: "Content-Type: text/plain; charset=UTF-8\n"},
		byID:   map[string]*Entry{},
		byKey:  map[string]*Entry{},
	}
}

// add appends an entry, enforcing (msgctxt, msgid) uniqueness.
func (f *File) add(e *Entry) error {
	if _, dup := f.byKey[e.key()]; dup && !e.Obsolete {
		return errors.New("duplicate entry " + strings.TrimPrefix(e.key(), "\x04"))
	}

	f.Entries = append(f.Entries, e)

	if e.Obsolete {
		return nil
	}

	f.byKey[e.key()] = e

	// First entry wins when the same msgid appears under several contexts.
	if _, ok := f.byID[e.MsgID]; !ok {
		f.byID[e.MsgID] = e
	}

	return nil
}

// Find returns the entry with the given msgid, or nil. Obsolete entries are
// not found. When the same msgid exists under several msgctxt values, the
// first one in catalog order is returned.
func (f *File) Find(msgid string) *Entry {
	return f.byID[msgid]
}

// FindAll returns every non-obsolete entry with the given msgid, in
// catalog order. Entries share a msgid when they differ only by msgctxt.
func (f *File) FindAll(msgid string) []*Entry {
	if _, ok := f.byID[msgid]; !ok {
		return nil
	}

	var out []*Entry

	for _, e := range f.Entries {
		if !e.Obsolete && e.MsgID == msgid {
			out = append(out, e)
		}
	}

	return out
}

// Meta returns the value of one header field, such as "Plural-Forms",
// or the empty string when the header does not carry it.
func (f *File) Meta(key string) string {
	if f.Header == nil {
		return ""
	}

	for line := range strings.SplitSeq(f.Header.MsgStr, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}

	return ""
}
