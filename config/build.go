// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"runtime/debug"
	"strings"
)

// BuildVersion is the latest tagged release of poreach.
const BuildVersion string = "v0.3.0"

// BuildInfo carries the VCS state compiled into the binary.
type BuildInfo struct {
	VcsRevision string
	VcsTime     string
	VcsModified bool
}

// Revision renders the VCS state as "date-shortrev", with a +dirty suffix
// for modified trees and "unknown" for builds outside a checkout.
func (b *BuildInfo) Revision() string {
	if b.VcsRevision == "" {
		return "unknown"
	}

	s := strings.Split(b.VcsTime, "T")[0] + "-" + b.VcsRevision[:min(8, len(b.VcsRevision))]
	if b.VcsModified {
		s += "+dirty"
	}

	return s
}

// LoadBuildInfo reads the VCS details stamped by the Go toolchain.
func LoadBuildInfo() BuildInfo {
	var b BuildInfo

	if info, ok := debug.ReadBuildInfo(); ok {
		b.VcsRevision = getBuildSetting(info.Settings, "vcs.revision")
		b.VcsTime = getBuildSetting(info.Settings, "vcs.time")
		b.VcsModified = getBuildSetting(info.Settings, "vcs.modified") == "true"
	}

	return b
}

func getBuildSetting(settings []debug.BuildSetting, key string) string {
	for _, kv := range settings {
		if key == kv.Key {
			return kv.Value
		}
	}

	return ""
}
