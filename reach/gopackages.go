// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package reach

import (
	"context"
	"fmt"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Packages is a Source over a loaded Go build graph. Package directories
// register under their root-relative dotted path, so the occurrence
// "internal/foo/bar.go" resolves as "internal.foo" plus the file stem, and
// exported identifiers resolve as attributes below the package.
type Packages struct {
	index map[string]*packages.Package
}

// LoadPackages loads the packages matched by patterns, rooted at dir.
func LoadPackages(ctx context.Context, dir string, patterns ...string) (*Packages, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedTypes,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages from %s: %w", dir, err)
	}

	var loadErrs int

	var firstErr error

	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			loadErrs++

			if firstErr == nil {
				firstErr = perr
			}
		}
	}

	if loadErrs > 0 {
		return nil, fmt.Errorf("loading packages from %s: %d errors, first: %w", dir, loadErrs, firstErr)
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving package dir %s: %w", dir, err)
	}

	p := &Packages{index: map[string]*packages.Package{}}

	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}

		rel, err := filepath.Rel(root, filepath.Dir(pkg.GoFiles[0]))
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}

		name := pkg.Name
		if rel != "." {
			name = strings.ReplaceAll(rel, string(filepath.Separator), ".")
		}

		p.index[name] = pkg
	}

	return p, nil
}

// Resolve matches the exact dotted package path.
func (p *Packages) Resolve(name string) (Object, bool) {
	pkg, ok := p.index[name]
	if !ok {
		return nil, false
	}

	return &pkgObject{src: p, path: name, pkg: pkg}, true
}

// Len returns how many packages the source indexed.
func (p *Packages) Len() int {
	return len(p.index)
}

type pkgObject struct {
	src  *Packages
	path string
	pkg  *packages.Package
}

// Attr resolves, in order: a child package, a source file stem, then an
// exported package-scope identifier.
func (o *pkgObject) Attr(name string) (Object, bool) {
	child := o.path + "." + name
	if pkg, ok := o.src.index[child]; ok {
		return &pkgObject{src: o.src, path: child, pkg: pkg}, true
	}

	for _, f := range o.pkg.GoFiles {
		if strings.TrimSuffix(filepath.Base(f), ".go") == name {
			return emptyObject{}, true
		}
	}

	if o.pkg.Types != nil {
		if sym := o.pkg.Types.Scope().Lookup(name); sym != nil && sym.Exported() {
			return &symbolObject{sym: sym}, true
		}
	}

	return nil, false
}

type symbolObject struct {
	sym types.Object
}

// Attr resolves methods and struct fields of the identifier's type.
func (o *symbolObject) Attr(name string) (Object, bool) {
	t := o.sym.Type()

	for _, typ := range []types.Type{t, types.NewPointer(t)} {
		ms := types.NewMethodSet(typ)
		for i := 0; i < ms.Len(); i++ {
			if ms.At(i).Obj().Name() == name {
				return emptyObject{}, true
			}
		}
	}

	if st, ok := t.Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			if st.Field(i).Name() == name {
				return emptyObject{}, true
			}
		}
	}

	return nil, false
}

type emptyObject struct{}

func (emptyObject) Attr(string) (Object, bool) { return nil, false }
