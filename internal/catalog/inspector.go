// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package catalog reads table definitions and session identity from the local
// database, producing the inputs the bridge encodes into request headers.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pxfbridge/cli/internal/bridge/model"
	bridgeerrors "pxfbridge/cli/internal/errors"
	"pxfbridge/cli/internal/logging"
)

const attributesQuery = `
	SELECT a.attnum, a.attname, a.atttypid, t.typname, a.atttypmod, a.attisdropped
	FROM pg_catalog.pg_attribute a
	JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
	JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
	LEFT JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
	WHERE n.nspname = $1 AND c.relname = $2 AND a.attnum > 0
	ORDER BY a.attnum`

const sessionQuery = `
	SELECT current_user::text, txid_current()::text, pg_backend_pid(), current_setting('server_encoding')`

// attributeRow is one pg_attribute entry. typname is NULL for dropped columns.
type attributeRow struct {
	Attnum       int16   `db:"attnum"`
	Attname      string  `db:"attname"`
	Atttypid     uint32  `db:"atttypid"`
	Typname      *string `db:"typname"`
	Atttypmod    int32   `db:"atttypmod"`
	Attisdropped bool    `db:"attisdropped"`
}

// Session is the identity of the connection the inspector queries through.
type Session struct {
	User             string
	TransactionID    string
	BackendPID       int64
	DatabaseEncoding string
}

// Inspector loads table schemas and caches them per qualified name.
type Inspector struct {
	// pool is the connection pool for catalog queries
	pool *pgxpool.Pool
	// cache stores schemas keyed by "schema.table"
	cache map[string]*model.TableSchema
	// mu protects cache
	mu sync.RWMutex
}

// NewInspector creates an Inspector over pool.
func NewInspector(pool *pgxpool.Pool) *Inspector {
	return &Inspector{
		pool:  pool,
		cache: make(map[string]*model.TableSchema),
	}
}

// LoadTable returns the column list of tableName, given as "table" or
// "schema.table". Dropped columns are included and flagged.
func (in *Inspector) LoadTable(ctx context.Context, tableName string) (*model.TableSchema, error) {
	schema, table := ParseTableName(tableName)
	key := schema + "." + table

	in.mu.RLock()
	if ts, ok := in.cache[key]; ok {
		in.mu.RUnlock()
		return ts, nil
	}
	in.mu.RUnlock()

	rows, err := in.pool.Query(ctx, attributesQuery, schema, table)
	if err != nil {
		return nil, err
	}
	attrs, err := pgx.CollectRows(rows, pgx.RowToStructByName[attributeRow])
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, bridgeerrors.Newf(bridgeerrors.Configuration, "relation %q does not exist", key)
	}

	ts := toTableSchema(schema, table, attrs)
	logging.Debug().
		Str("table", key).
		Int("columns", len(ts.Columns)).
		Int("reported", len(ts.Reported())).
		Msg("loaded table schema")

	in.mu.Lock()
	in.cache[key] = ts
	in.mu.Unlock()
	return ts, nil
}

// Session reads the identity of a pooled connection. The transaction id is
// the one txid_current assigns to this standalone query.
func (in *Inspector) Session(ctx context.Context) (*Session, error) {
	var s Session
	err := in.pool.QueryRow(ctx, sessionQuery).Scan(&s.User, &s.TransactionID, &s.BackendPID, &s.DatabaseEncoding)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseTableName splits a table name into schema and table components.
// If no schema is specified, it defaults to "public".
func ParseTableName(tableName string) (schema string, table string) {
	parts := strings.SplitN(tableName, ".", 2)
	if len(parts) == 2 && parts[0] != "" {
		return parts[0], parts[1]
	}
	return "public", strings.TrimPrefix(tableName, ".")
}

func toTableSchema(schema, table string, attrs []attributeRow) *model.TableSchema {
	ts := &model.TableSchema{
		Namespace: schema,
		Name:      table,
		Columns:   make([]model.Column, 0, len(attrs)),
	}
	for _, a := range attrs {
		col := model.Column{
			Ordinal: int(a.Attnum),
			Name:    a.Attname,
			TypeOID: a.Atttypid,
			TypeMod: a.Atttypmod,
			Dropped: a.Attisdropped,
		}
		if a.Typname != nil {
			col.TypeName = *a.Typname
		}
		ts.Columns = append(ts.Columns, col)
	}
	return ts
}
