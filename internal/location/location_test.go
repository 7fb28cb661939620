// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pxfbridge/cli/internal/bridge/model"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		resource string
		options  model.LocationOptions
	}{
		{
			name:     "profile and server",
			raw:      "pxf://data/orders?PROFILE=hdfs:text&SERVER=default",
			resource: "data/orders",
			options:  model.LocationOptions{{Key: "PROFILE", Value: "hdfs:text"}, {Key: "SERVER", Value: "default"}},
		},
		{
			name:     "order kept and case kept",
			raw:      "PXF://public.sales?server=pg&Profile=jdbc&BATCH_SIZE=1000",
			resource: "public.sales",
			options: model.LocationOptions{
				{Key: "server", Value: "pg"},
				{Key: "Profile", Value: "jdbc"},
				{Key: "BATCH_SIZE", Value: "1000"},
			},
		},
		{
			name:     "no options",
			raw:      "pxf://tmp/out",
			resource: "tmp/out",
		},
		{
			name:     "empty value and stray ampersand",
			raw:      "pxf://a?PROFILE=s3:parquet&&COMPRESSION_CODEC=",
			resource: "a",
			options:  model.LocationOptions{{Key: "PROFILE", Value: "s3:parquet"}, {Key: "COMPRESSION_CODEC", Value: ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Parse(tt.raw, "localhost", 5888)
			require.NoError(t, err)
			assert.Equal(t, tt.resource, loc.Resource)
			assert.Equal(t, tt.options, loc.Options)
			assert.Equal(t, tt.raw, loc.URI)
			assert.Equal(t, "localhost", loc.Host)
			assert.Equal(t, 5888, loc.Port)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{name: "empty", raw: "  ", reason: "empty location"},
		{name: "wrong scheme", raw: "hdfs://data/orders", reason: "missing or invalid scheme"},
		{name: "no resource", raw: "pxf://?PROFILE=x", reason: "missing resource path"},
		{name: "option without value", raw: "pxf://a?PROFILE", reason: `option "PROFILE" has no value`},
		{name: "empty option name", raw: "pxf://a?=x", reason: `option "=x" has an empty name`},
		{name: "duplicate ignoring case", raw: "pxf://a?PROFILE=x&profile=y", reason: `duplicate option "profile"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw, "localhost", 5888)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.reason, perr.Reason)
			assert.NotEmpty(t, perr.Hint)
		})
	}
}
