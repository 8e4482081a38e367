// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/poreach/poreach/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the poreach version",
		Run: func(cmd *cobra.Command, args []string) {
			build := config.LoadBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "poreach %s (%s)\n", config.BuildVersion, build.Revision())
		},
	}
}
