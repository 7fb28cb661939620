// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package headers encodes a scan or insert into the ordered header set sent to
// the remote data-access service.
//
// Header keys are sent exactly as written here. The remote side looks them up
// case-sensitively, so nothing in this package canonicalizes them.
package headers

// Entry is one header key/value pair.
type Entry struct {
	Key   string
	Value string
}

// Headers is an ordered header collection. Keys may repeat.
type Headers struct {
	entries []Entry
}

// New returns an empty collection.
func New() *Headers {
	return &Headers{}
}

// Append adds key=value at the end, keeping any earlier values for key.
func (h *Headers) Append(key, value string) {
	h.entries = append(h.entries, Entry{Key: key, Value: value})
}

// Override replaces every value of key with value. The first occurrence keeps
// its position; when key is absent the pair is appended.
func (h *Headers) Override(key, value string) {
	out := h.entries[:0]
	found := false
	for _, e := range h.entries {
		if e.Key != key {
			out = append(out, e)
			continue
		}
		if !found {
			out = append(out, Entry{Key: key, Value: value})
			found = true
		}
	}
	h.entries = out
	if !found {
		h.Append(key, value)
	}
}

// Get returns the first value for key.
func (h *Headers) Get(key string) (string, bool) {
	for _, e := range h.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Values returns every value for key in insertion order.
func (h *Headers) Values(key string) []string {
	var vals []string
	for _, e := range h.entries {
		if e.Key == key {
			vals = append(vals, e.Value)
		}
	}
	return vals
}

// Len returns the number of entries, counting repeated keys.
func (h *Headers) Len() int { return len(h.entries) }

// Entries returns a copy of the entries in order.
func (h *Headers) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Reset drops every entry.
func (h *Headers) Reset() {
	h.entries = nil
}

func (h *Headers) appendAll(entries []Entry) {
	h.entries = append(h.entries, entries...)
}
