// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pxfbridge/cli/internal/bridge/headers"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

func protocolVersion() string { return headers.APIVersion }

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI and protocol version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pxfbridge %s\nprotocol v%s\n", Version, protocolVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
