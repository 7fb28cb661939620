// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pxfbridge/cli/internal/logging"
)

// dbinfoCmd shows where pxfbridge will look up tables and which service it
// will talk to. Credentials in the DSN are masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the catalog connection and PXF service settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, source, err := resolveDSN()
		if err != nil {
			pterm.Println("⚠️  No database connection configured")
			pterm.Println("   Please run: pxfbridge connect")
			return nil
		}
		pterm.Println("Using DSN from " + source)
		pterm.Println()

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Catalog Database")).
			WithPadding(1).
			Println(logging.Mask(dsn))
		pterm.Println()

		data := pterm.TableData{
			{"Setting", "Value"},
			{"PXF host", cfg.PXF.Host},
			{"PXF port", strconv.Itoa(cfg.PXF.Port)},
			{"Service prefix", cfg.PXF.ServicePrefix},
			{"Legacy URI", strconv.FormatBool(cfg.PXF.LegacyURI)},
			{"Segment", fmt.Sprintf("%d of %d", cfg.Segment.ID, cfg.Segment.Count)},
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		pterm.Println()
		pterm.Println("To update the connection, run: pxfbridge connect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
