// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package reach

import (
	"testing"
)

func testSource() *Static {
	return NewStatic(map[string]any{
		"lino":      map[string]any{"api": nil},
		"lino.core": map[string]any{
			"actions": map[string]any{
				"save_label": nil,
			},
		},
		"pkg.sub.mod": nil,
		"a":           map[string]any{"b": map[string]any{"c": nil}},
		"a.b":         nil,
	})
}

func TestResolveForward(t *testing.T) {
	t.Parallel()

	src := testSource()

	tests := []struct {
		name   string
		dotted string
		want   bool
	}{
		{
			name:   "direct module name",
			dotted: "lino",
			want:   true,
		},
		{
			name:   "longer prefix replaces the resolved object",
			dotted: "lino.core.actions.save_label",
			want:   true,
		},
		{
			name:   "attribute walk below a module",
			dotted: "lino.api",
			want:   true,
		},
		{
			name:   "unknown first segment",
			dotted: "other.core",
			want:   false,
		},
		{
			name:   "walk fails on a missing attribute",
			dotted: "lino.core.actions.missing",
			want:   false,
		},
		{
			name:   "leaf attributes expose nothing further",
			dotted: "lino.api.deeper",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, got := resolveForward(src, tt.dotted); got != tt.want {
				t.Errorf("resolveForward(%q) = %v, want %v", tt.dotted, got, tt.want)
			}
		})
	}
}

func TestResolveModule(t *testing.T) {
	t.Parallel()

	src := testSource()

	tests := []struct {
		name   string
		dotted string
		want   bool
	}{
		{
			name:   "exact match",
			dotted: "pkg.sub.mod",
			want:   true,
		},
		{
			name:   "prefix plus attribute remainder",
			dotted: "lino.core.actions",
			want:   true,
		},
		{
			name:   "remainder does not walk",
			dotted: "lino.core.widgets",
			want:   false,
		},
		{
			name:   "nothing known",
			dotted: "django.db.models",
			want:   false,
		},
		{
			name:   "prefix plus single attribute",
			dotted: "lino.api",
			want:   true,
		},
		{
			// "a.b" resolves but has no attrs; the walk must fall back to
			// the shorter prefix "a" and succeed there.
			name:   "failed walk under a long prefix still tries shorter ones",
			dotted: "a.b.c",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveModule(src, tt.dotted); got != tt.want {
				t.Errorf("resolveModule(%q) = %v, want %v", tt.dotted, got, tt.want)
			}
		})
	}
}
