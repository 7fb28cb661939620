// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
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
	readOpts     requestOptions
	readOutput   string
	readChunk    int
	readMinChunk int
	readTrace    bool
)

// readCmd scans an external table and writes the raw row stream.
var readCmd = &cobra.Command{
	Use:   "read <table>",
	Short: "Scan an external table through the PXF service",
	Long: `The read command loads the definition of <table> from the catalog database,
sends it with the location options to the PXF service and copies the returned
row stream to stdout or --output.

Selecting columns with --columns or --filter-columns lets the service skip the
others. Filters are passed through unchanged in their serialized form.`,
	Example: `  pxfbridge read sales.orders --location 'pxf://data/orders?PROFILE=hdfs:text'
  pxfbridge read orders --location 'pxf://orders?PROFILE=jdbc' --columns id,total --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		readOpts.table = args[0]
		out, closeOut, err := openOutput(readOutput)
		if err != nil {
			return err
		}
		defer closeOut()

		n, err := runRead(ctx, out)
		if err != nil {
			if bridgeerrors.KindOf(err) == bridgeerrors.Connectivity {
				return httperrors.FormatNetworkError(err, serviceTarget())
			}
			return err
		}
		if readOutput != "" {
			pterm.Success.Printf("Read %s into %s\n", formatBytes(n), readOutput)
		}
		return nil
	},
}

func runRead(ctx context.Context, out io.Writer) (int64, error) {
	pool, err := openCatalog(ctx)
	if err != nil {
		return 0, err
	}
	defer pool.Close()

	req, err := buildRequest(ctx, catalog.NewInspector(pool), readOpts)
	if err != nil {
		return 0, err
	}

	bc := newBridgeContext(readTrace)
	defer bc.Release()
	if err := bc.ImportStart(ctx, req); err != nil {
		return 0, err
	}

	p := startProgress("reading", readOutput != "" && terminal.IsInteractive(os.Stdout))
	err = copyFromBridge(out, bc, make([]byte, readChunk), readMinChunk, p.add)
	total, elapsed := p.done()
	logging.Info().
		Str("table", readOpts.table).
		Int64("bytes", total).
		Dur("elapsed", elapsed).
		Msg("read finished")
	return total, err
}

// chunkReader is the read side of a bridge context.
type chunkReader interface {
	Read(buf []byte, minLen int) (int, error)
	Completed() bool
}

// copyFromBridge drains r into w until the stream ends.
func copyFromBridge(w io.Writer, r chunkReader, buf []byte, minLen int, onChunk func(int)) error {
	for {
		n, err := r.Read(buf, minLen)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			onChunk(n)
		}
		if err != nil {
			return err
		}
		if n == 0 || r.Completed() {
			return nil
		}
	}
}

// openOutput returns stdout for an empty path.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		w := bufio.NewWriter(os.Stdout)
		return w, func() { _ = w.Flush() }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := bufio.NewWriter(f)
	return w, func() {
		_ = w.Flush()
		_ = f.Close()
	}, nil
}

func addRequestFlags(cmd *cobra.Command, opts *requestOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.location, "location", "l", "", "External location, e.g. pxf://path?PROFILE=name")
	f.StringVar(&opts.format, "format", "text", "Data format: text, csv or custom")
	f.StringArrayVar(&opts.formatOptions, "format-opt", nil, "Format option key=value (repeatable)")
	_ = cmd.MarkFlagRequired("location")
}

func init() {
	rootCmd.AddCommand(readCmd)
	addRequestFlags(readCmd, &readOpts)
	f := readCmd.Flags()
	f.StringSliceVar(&readOpts.columns, "columns", nil, "Columns the scan returns (enables projection)")
	f.StringSliceVar(&readOpts.filterColumns, "filter-columns", nil, "Columns referenced by --filter")
	f.StringVar(&readOpts.filter, "filter", "", "Serialized filter predicate passed to the service")
	f.StringVarP(&readOutput, "output", "o", "", "Write rows to this file instead of stdout")
	f.IntVar(&readChunk, "chunk-size", 64<<10, "Read buffer size in bytes")
	f.IntVar(&readMinChunk, "min-chunk", 0, "Bytes to collect before each write (0 fills the buffer)")
	f.BoolVar(&readTrace, "trace", false, "Ask the service to trace this request")
}
