// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package reach

import "strings"

// resolveForward walks a dotted name left to right. At each segment the
// whole prefix so far is first tried against the source as a fully loaded
// unit; a longer resolvable prefix replaces whatever object was in hand.
// When the prefix is unknown, the segment is looked up as an attribute of
// the current object instead. Every segment must resolve one way or the
// other.
func resolveForward(src Source, name string) (Object, bool) {
	parts := strings.Split(name, ".")

	var obj Object

	for i, part := range parts {
		if o, ok := src.Resolve(strings.Join(parts[:i+1], ".")); ok {
			obj = o

			continue
		}

		if obj == nil {
			return nil, false
		}

		o, ok := obj.Attr(part)
		if !ok {
			return nil, false
		}

		obj = o
	}

	return obj, obj != nil
}

// resolveModule tests a dotted module name in two steps: an exact match
// first, then progressively shorter prefixes whose objects must walk the
// remaining segments as attributes. A prefix that resolves but cannot walk
// the remainder does not end the search; shorter prefixes are still tried.
func resolveModule(src Source, name string) bool {
	if _, ok := src.Resolve(name); ok {
		return true
	}

	parts := strings.Split(name, ".")

	for i := len(parts) - 1; i >= 1; i-- {
		obj, ok := src.Resolve(strings.Join(parts[:i], "."))
		if !ok {
			continue
		}

		if walkAttrs(obj, parts[i:]) {
			return true
		}
	}

	return false
}

func walkAttrs(obj Object, parts []string) bool {
	for _, part := range parts {
		next, ok := obj.Attr(part)
		if !ok {
			return false
		}

		obj = next
	}

	return true
}
