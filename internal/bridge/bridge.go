// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge moves one table scan or insert across an HTTP exchange with
// the remote data-access service.
//
// A Context is built from an endpoint URI and an encoded header set, opened
// through an Opener, then drained with Read or fed with Write until the engine
// is done, and finally released. The transport itself is pluggable; the
// httpclient subpackage provides the HTTP implementation.
package bridge

import (
	"context"

	"pxfbridge/cli/internal/bridge/headers"
)

// Transport is one open exchange with the remote service.
type Transport interface {
	// Read blocks until bytes are available. It returns 0 bytes (with io.EOF or
	// nil) once no more data will arrive.
	Read(p []byte) (int, error)
	// Write blocks until the transport has accepted p.
	Write(p []byte) (int, error)
	// CheckConnectivity reports an error when the exchange ended abnormally
	// rather than with a clean close.
	CheckConnectivity() error
	// Close releases the exchange. For uploads it waits for the final response.
	Close() error
}

// Opener starts exchanges against a URI with a prepared header set.
type Opener interface {
	OpenDownload(ctx context.Context, uri string, h *headers.Headers) (Transport, error)
	OpenUpload(ctx context.Context, uri string, h *headers.Headers) (Transport, error)
}
