// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the data structures exchanged between the query engine
// side of the bridge and the header/stream layers.
//
// The types are transport-agnostic: they describe a table, the columns a query
// needs, the session issuing it and where the data lives. None of them are
// mutated by the bridge during a scan or insert.
package model

import (
	"strconv"

	"pxfbridge/cli/internal/bridge/expr"
)

// NoTypeMod is the catalog sentinel for a column without a type modifier.
const NoTypeMod int32 = -1

// Column is one attribute of a table as stored in the catalog.
type Column struct {
	// Ordinal is the 1-based attribute number, counting dropped columns.
	Ordinal  int
	Name     string
	TypeOID  uint32
	TypeName string // Optional; resolved from TypeOID when empty
	TypeMod  int32  // NoTypeMod (or any negative value) when absent
	Dropped  bool
}

// HasTypeMod reports whether the column carries a type modifier.
func (c Column) HasTypeMod() bool { return c.TypeMod >= 0 }

// TableSchema is an ordered column list plus the table's qualified name.
type TableSchema struct {
	Namespace string
	Name      string
	Columns   []Column
}

// Reported returns the non-dropped columns in order. A column's position in the
// returned slice is its reported index.
func (t *TableSchema) Reported() []Column {
	if t == nil {
		return nil
	}
	out := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.Dropped {
			out = append(out, c)
		}
	}
	return out
}

// ProjectionRequest describes the columns a scan actually needs.
type ProjectionRequest struct {
	// Targets is the output expression list. A bare *expr.ColumnRef is a simple reference.
	Targets []expr.Node
	// Quals are the filter predicate's expressions.
	Quals []expr.Node
	// Unsupported is set when the caller's own analysis could not classify every
	// referenced column. The projection hint is then withheld entirely.
	Unsupported bool
}

// SessionContext identifies who is running the query and where.
type SessionContext struct {
	User          string
	SegmentID     int
	SegmentCount  int
	TransactionID string
	SessionID     int64
	CommandCount  int64
}

// Option is a single key/value pair, kept in user order.
type Option struct {
	Key   string
	Value string
}

// LocationOptions are the user-supplied options of an external resource location.
type LocationOptions []Option

// Location points at the remote service and the resource behind it.
type Location struct {
	Host     string
	Port     int
	Resource string
	Options  LocationOptions
	// URI is the full location string as given by the user.
	URI string
}

// PortString returns the port formatted for a header value.
func (l Location) PortString() string { return strconv.Itoa(l.Port) }

// Format codes as stored in the external table catalog.
const (
	FormatText   byte = 't'
	FormatCSV    byte = 'c'
	FormatCustom byte = 'b'
)

// Format is a table's storage format and its copy options.
type Format struct {
	Code     byte
	Options  []Option
	Encoding string
}
