// Package uri formats the endpoint URIs of the remote data-access service.
package uri

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// TraceThreshold is the least verbose log level that requests service tracing.
const TraceThreshold = zerolog.DebugLevel

const (
	endpointRead  = "read"
	endpointWrite = "write"
	traceQuery    = "?trace=true"
)

// Builder formats read and write URIs for one service address.
type Builder struct {
	Host   string
	Port   int
	Prefix string
	// Trace appends the trace flag to every URI.
	Trace bool
}

// Read returns http://host:port/prefix/read.
func (b Builder) Read() string {
	return b.build("", endpointRead)
}

// Write returns http://host:port/prefix/write.
func (b Builder) Write() string {
	return b.build("", endpointWrite)
}

// LegacyRead places resource between the prefix and the endpoint, the layout
// used by older service versions.
func (b Builder) LegacyRead(resource string) string {
	return b.build(resource, endpointRead)
}

// LegacyWrite is LegacyRead for the write endpoint.
func (b Builder) LegacyWrite(resource string) string {
	return b.build(resource, endpointWrite)
}

func (b Builder) build(resource, endpoint string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "http://%s:%d/%s", b.Host, b.Port, b.Prefix)
	if resource = strings.Trim(resource, "/"); resource != "" {
		sb.WriteByte('/')
		sb.WriteString(resource)
	}
	sb.WriteByte('/')
	sb.WriteString(endpoint)
	if b.Trace {
		sb.WriteString(traceQuery)
	}
	return sb.String()
}

// TraceEnabled reports whether either the request-scoped or the session-wide
// log level is verbose enough to ask the service for tracing.
func TraceEnabled(requestLevel, sessionLevel zerolog.Level) bool {
	return enabled(requestLevel) || enabled(sessionLevel)
}

func enabled(l zerolog.Level) bool {
	return l <= TraceThreshold
}
