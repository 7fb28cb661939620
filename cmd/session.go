// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"pxfbridge/cli/internal/bridge"
	"pxfbridge/cli/internal/bridge/expr"
	"pxfbridge/cli/internal/bridge/headers"
	"pxfbridge/cli/internal/bridge/httpclient"
	"pxfbridge/cli/internal/bridge/model"
	"pxfbridge/cli/internal/bridge/uri"
	"pxfbridge/cli/internal/catalog"
	"pxfbridge/cli/internal/keychain"
	"pxfbridge/cli/internal/location"
	"pxfbridge/cli/internal/logging"
)

// Environment variables consulted for the catalog DSN before the keychain.
const (
	envDSN         = "PXFBRIDGE_DSN"
	envDatabaseURL = "DATABASE_URL"
)

var errNoDSN = errors.New("no database connection configured; run 'pxfbridge connect'")

// resolveDSN returns the catalog DSN and where it came from.
func resolveDSN() (dsn, source string, err error) {
	for _, env := range []string{envDSN, envDatabaseURL} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, env + " environment variable", nil
		}
	}
	km, err := keychain.GetManager()
	if err != nil {
		return "", "", err
	}
	dsn, err = km.LoadDBDSN()
	if err != nil || strings.TrimSpace(dsn) == "" {
		return "", "", errNoDSN
	}
	return dsn, "OS keychain", nil
}

// openCatalog connects to the catalog database.
func openCatalog(ctx context.Context) (*pgxpool.Pool, error) {
	dsn, _, err := resolveDSN()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// requestOptions are the per-command inputs to a header request.
type requestOptions struct {
	table         string
	location      string
	format        string
	formatOptions []string
	columns       []string
	filterColumns []string
	filter        string
}

// buildRequest assembles a header request for opts from the catalog.
func buildRequest(ctx context.Context, in *catalog.Inspector, opts requestOptions) (headers.Request, error) {
	var req headers.Request

	table, err := in.LoadTable(ctx, opts.table)
	if err != nil {
		return req, err
	}
	sess, err := in.Session(ctx)
	if err != nil {
		return req, err
	}
	loc, err := location.Parse(opts.location, cfg.PXF.Host, cfg.PXF.Port)
	if err != nil {
		return req, err
	}
	format, err := parseFormat(opts.format, opts.formatOptions, sess.DatabaseEncoding)
	if err != nil {
		return req, err
	}

	req = headers.Request{
		Table:  table,
		Format: format,
		Session: model.SessionContext{
			User:          sess.User,
			SegmentID:     cfg.Segment.ID,
			SegmentCount:  cfg.Segment.Count,
			TransactionID: sess.TransactionID,
			SessionID:     sess.BackendPID,
			CommandCount:  1,
		},
		Location:         *loc,
		DatabaseEncoding: sess.DatabaseEncoding,
		Filter:           opts.filter,
	}

	if len(opts.columns) > 0 || len(opts.filterColumns) > 0 {
		proj, err := projectionFor(table, opts.columns, opts.filterColumns, opts.filter)
		if err != nil {
			return req, err
		}
		req.Projection = proj
	}
	return req, nil
}

// parseFormat maps a format flag to a format descriptor. Options are
// "key=value" pairs.
func parseFormat(name string, rawOpts []string, encoding string) (model.Format, error) {
	f := model.Format{Encoding: encoding}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		f.Code = model.FormatText
	case "csv":
		f.Code = model.FormatCSV
	case "custom", "binary":
		f.Code = model.FormatCustom
	default:
		return f, fmt.Errorf("unknown format %q (use text, csv or custom)", name)
	}
	for _, raw := range rawOpts {
		k, v, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return f, fmt.Errorf("format option %q must be key=value", raw)
		}
		f.Options = append(f.Options, model.Option{Key: strings.TrimSpace(k), Value: v})
	}
	return f, nil
}

// projectionFor turns column names into a projection request. Columns named
// in filterColumns become qualifier references. A filter whose columns are not
// named makes the projection unsupported, since the service would drop them.
func projectionFor(table *model.TableSchema, columns, filterColumns []string, filter string) (*model.ProjectionRequest, error) {
	byName := make(map[string]int, len(table.Columns))
	for _, c := range table.Reported() {
		byName[c.Name] = c.Ordinal
	}
	resolve := func(names []string) ([]expr.Node, error) {
		nodes := make([]expr.Node, 0, len(names))
		for _, n := range names {
			ord, ok := byName[strings.TrimSpace(n)]
			if !ok {
				return nil, fmt.Errorf("column %q not found in %s.%s", n, table.Namespace, table.Name)
			}
			nodes = append(nodes, expr.Col(ord))
		}
		return nodes, nil
	}

	targets, err := resolve(columns)
	if err != nil {
		return nil, err
	}
	quals, err := resolve(filterColumns)
	if err != nil {
		return nil, err
	}
	proj := &model.ProjectionRequest{Targets: targets, Quals: quals}
	if filter != "" && len(quals) == 0 {
		logging.Warn().Msg("--filter given without --filter-columns; sending the full column list")
		proj.Unsupported = true
	}
	return proj, nil
}

// newBridgeContext returns a context addressing the configured service.
func newBridgeContext(trace bool) *bridge.Context {
	return bridge.NewContext(httpclient.New(), bridge.Config{
		Service:   serviceBuilder(trace),
		LegacyURI: cfg.PXF.LegacyURI,
	})
}

// serviceBuilder formats URIs for the configured service. The service traces
// the request when trace is set or the CLI logs at debug.
func serviceBuilder(trace bool) uri.Builder {
	requestLevel := zerolog.InfoLevel
	if trace {
		requestLevel = zerolog.TraceLevel
	}
	return uri.Builder{
		Host:   cfg.PXF.Host,
		Port:   cfg.PXF.Port,
		Prefix: cfg.PXF.ServicePrefix,
		Trace:  uri.TraceEnabled(requestLevel, logLevel),
	}
}

// endpointURI is the URI a read or write of resource is sent to.
func endpointURI(b uri.Builder, resource string, write bool) string {
	switch {
	case cfg.PXF.LegacyURI && write:
		return b.LegacyWrite(resource)
	case cfg.PXF.LegacyURI:
		return b.LegacyRead(resource)
	case write:
		return b.Write()
	default:
		return b.Read()
	}
}

func serviceTarget() string {
	return fmt.Sprintf("%s:%d", cfg.PXF.Host, cfg.PXF.Port)
}
