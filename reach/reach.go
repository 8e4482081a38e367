// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package reach decides whether catalog entries are still in use.
//
// A reachability strategy answers "does the code path or template that
// produced this entry exist in the running application" for one entry at a
// time. What counts as loaded is supplied by the caller as a Source, an
// opaque oracle over dotted names; nothing in this package inspects the
// host environment behind the caller's back.
package reach

import (
	"errors"

	"codeberg.org/poreach/poreach/catalog"
)

// ErrNoPackageRoot reports that the module-path strategy could not
// establish a base directory for occurrence paths.
var ErrNoPackageRoot = errors.New("package root unresolvable")

// Source reports whether a dotted name is known to the host environment.
type Source interface {
	// Resolve returns the object a fully qualified dotted name denotes.
	Resolve(name string) (Object, bool)
}

// Object supports attribute-style traversal below a resolved name.
type Object interface {
	Attr(name string) (Object, bool)
}

// Strategy is the common reachability contract.
type Strategy interface {
	Reachable(e *catalog.Entry) bool
}
