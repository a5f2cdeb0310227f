// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     main
// Description: Supervisia CLI entry point
// License:     MIT
// ============================================================================

package main

import (
	"os"

	"github.com/supervisia/supervisia/cmd/supervisia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
