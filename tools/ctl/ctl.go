// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// The ctl binary is a maintenance CLI for the package index: uploading and
// validating distributions, querying search, and moving stored artifacts.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/google/pypindex/tools/ctl/command/check"
	"github.com/google/pypindex/tools/ctl/command/recent"
	"github.com/google/pypindex/tools/ctl/command/search"
	"github.com/google/pypindex/tools/ctl/command/sync"
	"github.com/google/pypindex/tools/ctl/command/upload"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ctl [subcommand]",
	Short: "A maintenance tool for the package index",
}

func init() {
	rootCmd.AddCommand(upload.Command())
	rootCmd.AddCommand(search.Command())
	rootCmd.AddCommand(check.Command())
	rootCmd.AddCommand(sync.Command())
	rootCmd.AddCommand(recent.Command())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
