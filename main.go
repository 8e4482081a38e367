// Copyright 2024 - 2025, the poreach contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
poreach decides which strings of a gettext translation catalog are worth
translating, extracts them as a JSON exchange file, machine-translates
them, and merges the results back into the catalog before compiling its
binary form.
*/
package main

import (
	"github.com/joho/godotenv"

	"codeberg.org/poreach/poreach/cmd"
)

func main() {
	// A .env file may carry GEMINI_API_KEY; a missing file is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
