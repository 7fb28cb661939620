// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pxfbridge/cli/internal/catalog"
	bridgeerrors "pxfbridge/cli/internal/errors"
	"pxfbridge/cli/internal/httperrors"
	"pxfbridge/cli/internal/logging"
	"pxfbridge/cli/internal/terminal"
)

var (
	writeOpts  requestOptions
	writeInput string
	writeChunk int
	writeTrace bool
)

// writeCmd uploads a row stream into an external table.
var writeCmd = &cobra.Command{
	Use:   "write <table>",
	Short: "Insert rows into an external table through the PXF service",
	Long: `The write command sends the rows read from stdin or --input to the PXF service,
described by the definition of <table> from the catalog database. The service
answers once the upload is finished.`,
	Example: `  pxfbridge write sales.orders --location 'pxf://data/orders?PROFILE=hdfs:text' --input orders.txt`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		writeOpts.table = args[0]
		in := io.Reader(os.Stdin)
		if writeInput != "" && writeInput != "-" {
			f, err := os.Open(writeInput)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		n, err := runWrite(ctx, in)
		if err != nil {
			if bridgeerrors.KindOf(err) == bridgeerrors.Connectivity {
				return httperrors.FormatNetworkError(err, serviceTarget())
			}
			return err
		}
		pterm.Success.Printf("Wrote %s to %s\n", formatBytes(n), writeOpts.table)
		return nil
	},
}

func runWrite(ctx context.Context, in io.Reader) (int64, error) {
	pool, err := openCatalog(ctx)
	if err != nil {
		return 0, err
	}
	defer pool.Close()

	req, err := buildRequest(ctx, catalog.NewInspector(pool), writeOpts)
	if err != nil {
		return 0, err
	}

	bc := newBridgeContext(writeTrace)
	defer bc.Release()
	if err := bc.ExportStart(ctx, req); err != nil {
		return 0, err
	}

	p := startProgress("writing", terminal.IsInteractive(os.Stdout))
	err = copyToBridge(bc, in, make([]byte, writeChunk), p.add)
	total, elapsed := p.done()
	if err != nil {
		return total, err
	}
	if err := bc.FinishUpload(); err != nil {
		return total, err
	}
	logging.Info().
		Str("table", writeOpts.table).
		Int64("bytes", total).
		Dur("elapsed", elapsed).
		Msg("write finished")
	return total, nil
}

// copyToBridge sends everything from r through w, one chunk per call.
func copyToBridge(w io.Writer, r io.Reader, buf []byte, onChunk func(int)) error {
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			onChunk(n)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func init() {
	rootCmd.AddCommand(writeCmd)
	addRequestFlags(writeCmd, &writeOpts)
	f := writeCmd.Flags()
	f.StringVarP(&writeInput, "input", "i", "", "Read rows from this file instead of stdin")
	f.IntVar(&writeChunk, "chunk-size", 64<<10, "Bytes sent per write")
	f.BoolVar(&writeTrace, "trace", false, "Ask the service to trace this request")
}
