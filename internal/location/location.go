// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package location parses external resource location strings of the form
//
//	pxf://<resource path>?KEY=value&KEY2=value2
//
// into a model.Location. Option order is preserved because it is reflected in
// the request headers.
package location

import (
	"fmt"
	"strings"

	"pxfbridge/cli/internal/bridge/model"
)

// Scheme is the only accepted location scheme.
const Scheme = "pxf"

// ParseError describes a malformed location string.
type ParseError struct {
	Location string
	Reason   string
	Hint     string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid location: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid location: %s", e.Reason)
}

func newParseError(loc, reason, hint string) *ParseError {
	return &ParseError{Location: loc, Reason: reason, Hint: hint}
}

const formatHint = "use pxf://<path>?PROFILE=<profile>[&KEY=value...]"

// Parse splits raw into resource and options. host and port address the
// service that will serve the resource.
func Parse(raw, host string, port int) (*model.Location, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, newParseError(raw, "empty location", formatHint)
	}

	prefix := Scheme + "://"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return nil, newParseError(raw, "missing or invalid scheme", formatHint)
	}
	rest := s[len(prefix):]

	resource, query, _ := strings.Cut(rest, "?")
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return nil, newParseError(raw, "missing resource path", formatHint)
	}

	opts, err := parseOptions(raw, query)
	if err != nil {
		return nil, err
	}

	return &model.Location{
		Host:     host,
		Port:     port,
		Resource: resource,
		Options:  opts,
		URI:      s,
	}, nil
}

func parseOptions(raw, query string) (model.LocationOptions, error) {
	if query == "" {
		return nil, nil
	}
	var (
		opts model.LocationOptions
		seen = make(map[string]struct{})
	)
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, newParseError(raw, fmt.Sprintf("option %q has no value", pair), "write options as KEY=value")
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, newParseError(raw, fmt.Sprintf("option %q has an empty name", pair), "write options as KEY=value")
		}
		// Keys are case-insensitive once upper-cased into headers.
		norm := strings.ToUpper(key)
		if _, dup := seen[norm]; dup {
			return nil, newParseError(raw, fmt.Sprintf("duplicate option %q", key), "give each option only once")
		}
		seen[norm] = struct{}{}
		opts = append(opts, model.Option{Key: key, Value: value})
	}
	return opts, nil
}
