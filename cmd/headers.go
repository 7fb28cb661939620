package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pxfbridge/cli/internal/bridge/headers"
	"pxfbridge/cli/internal/catalog"
	"pxfbridge/cli/internal/logging"
)

var (
	headersOpts  requestOptions
	headersWrite bool
)

// headersCmd prints the request a read or write would send, without
// contacting the service.
var headersCmd = &cobra.Command{
	Use:   "headers <table>",
	Short: "Show the request headers for a table without sending them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		headersOpts.table = args[0]

		pool, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		req, err := buildRequest(ctx, catalog.NewInspector(pool), headersOpts)
		if err != nil {
			return err
		}
		method := "GET"
		if headersWrite {
			method = "POST"
			req.Projection = nil
			req.Filter = ""
		}

		h, err := headers.Build(req)
		if err != nil {
			return err
		}

		target := endpointURI(serviceBuilder(false), req.Location.Resource, headersWrite)
		pterm.DefaultSection.Println(fmt.Sprintf("%s %s", method, target))
		return pterm.DefaultTable.WithHasHeader().WithData(headerTable(h)).Render()
	},
}

// headerTable renders h with credential-like values masked.
func headerTable(h *headers.Headers) pterm.TableData {
	data := pterm.TableData{{"Header", "Value"}}
	for _, e := range h.Entries() {
		data = append(data, []string{e.Key, logging.MaskHeader(e.Key, e.Value)})
	}
	return data
}

func init() {
	rootCmd.AddCommand(headersCmd)
	addRequestFlags(headersCmd, &headersOpts)
	f := headersCmd.Flags()
	f.BoolVar(&headersWrite, "write", false, "Show the headers of a write instead of a read")
	f.StringSliceVar(&headersOpts.columns, "columns", nil, "Columns the scan returns")
	f.StringSliceVar(&headersOpts.filterColumns, "filter-columns", nil, "Columns referenced by --filter")
	f.StringVar(&headersOpts.filter, "filter", "", "Serialized filter predicate")
}
