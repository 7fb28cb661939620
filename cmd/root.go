// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for pxfbridge.
// It wires the catalog inspector, the header builder and the HTTP transport
// into commands that read from and write to a PXF service, using the Cobra
// CLI framework with pterm for terminal output.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pxfbridge/cli/internal/config"
	"pxfbridge/cli/internal/logging"
)

var (
	showVersion bool

	flagLogLevel  string
	flagPXFHost   string
	flagPXFPort   int
	flagLegacyURI bool
	flagSegmentID int
	flagSegments  int

	// cfg is the resolved configuration: file, then environment, then flags.
	cfg config.Config
	// logLevel is the level the global logger was configured with.
	logLevel zerolog.Level
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pxfbridge",
	Short: "Stream table data to and from a PXF service",
	Long: `pxfbridge reads and writes external tables through a PXF service. It loads the
table definition from a local PostgreSQL-compatible database, encodes it into the
PXF request headers, and streams rows over HTTP.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("pxfbridge %s\nprotocol v%s\n", Version, protocolVersion())
			return nil
		}
		return cmd.Help()
	},
}

// setup resolves configuration and installs the global logger before any
// subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, &c)
	cfg = c

	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logLevel = lvl
	logging.SetGlobalLogger(logging.NewConsole(os.Stderr, lvl))
	logging.Debug().
		Str("pxf_host", cfg.PXF.Host).
		Int("pxf_port", cfg.PXF.Port).
		Bool("legacy_uri", cfg.PXF.LegacyURI).
		Msg("configuration resolved")
	return nil
}

// applyFlags overrides c with the persistent flags the user actually set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
	if flags.Changed("pxf-host") {
		c.PXF.Host = flagPXFHost
	}
	if flags.Changed("pxf-port") {
		c.PXF.Port = flagPXFPort
	}
	if flags.Changed("legacy-uri") {
		c.PXF.LegacyURI = flagLegacyURI
	}
	if flags.Changed("segment-id") {
		c.Segment.ID = flagSegmentID
	}
	if flags.Changed("segment-count") {
		c.Segment.Count = flagSegments
	}
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("pxfbridge", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and protocol version information")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&flagPXFHost, "pxf-host", config.DefaultHost, "PXF service host (overrides PXF_HOST)")
	pf.IntVar(&flagPXFPort, "pxf-port", config.DefaultPort, "PXF service port (overrides PXF_PORT)")
	pf.BoolVar(&flagLegacyURI, "legacy-uri", false, "Put the resource path into the endpoint URI")
	pf.IntVar(&flagSegmentID, "segment-id", 0, "Segment id reported to the service")
	pf.IntVar(&flagSegments, "segment-count", 1, "Total number of segments sharing the scan")
}
