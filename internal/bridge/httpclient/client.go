// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httpclient implements the bridge transport over HTTP.
//
// Reads are a GET whose response body is streamed back to the caller. Writes
// are a POST whose request body is fed through a pipe while the request is in
// flight. Every exchange uses its own connection.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pxfbridge/cli/internal/bridge"
	"pxfbridge/cli/internal/bridge/headers"
	bridgeerrors "pxfbridge/cli/internal/errors"
	"pxfbridge/cli/internal/logging"
)

var errWrongDirection = errors.New("transport does not support this direction")

// maxErrorBody caps how much of an error response is kept for the message.
const maxErrorBody = 64 << 10

// RemoteError is a non-2xx answer from the remote service.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote component error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("remote component error (%d): %s", e.StatusCode, e.Message)
}

// Client opens downloads and uploads against the remote service.
type Client struct {
	http *http.Client
}

var _ bridge.Opener = (*Client)(nil)

// New returns a client with its own instrumented transport.
func New() *Client {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		DisableKeepAlives:     true,
		ExpectContinueTimeout: time.Second,
	}
	return &Client{http: &http.Client{Transport: otelhttp.NewTransport(base)}}
}

// EncodeValue percent-encodes a header value. Spaces become %20.
func EncodeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// applyHeaders copies h onto req without canonicalizing keys.
func applyHeaders(req *http.Request, h *headers.Headers) {
	if h == nil {
		return
	}
	for _, e := range h.Entries() {
		if e.Key == headers.HeaderConnection {
			if strings.EqualFold(e.Value, "close") {
				req.Close = true
			}
			req.Header[e.Key] = []string{e.Value}
			continue
		}
		req.Header[e.Key] = append(req.Header[e.Key], EncodeValue(e.Value))
	}
}

// OpenDownload sends the read request and returns once the response headers arrived.
func (c *Client) OpenDownload(ctx context.Context, uri string, h *headers.Headers) (bridge.Transport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, h)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Str("uri", uri).
		Int("status", resp.StatusCode).
		Msg("download opened")
	return &download{resp: resp}, nil
}

// OpenUpload starts the write request. Data written to the returned transport
// becomes the request body; Close ends it and waits for the response.
func (c *Client) OpenUpload(ctx context.Context, uri string, h *headers.Headers) (bridge.Transport, error) {
	pr, pw := io.Pipe()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, pr)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, h)
	req.Header["Content-Type"] = []string{"application/octet-stream"}

	u := &upload{pw: pw, done: make(chan result, 1)}
	go func() {
		resp, err := c.http.Do(req)
		if err != nil {
			pr.CloseWithError(err)
		}
		u.done <- result{resp: resp, err: err}
	}()
	logging.Debug().Str("uri", uri).Msg("upload opened")
	return u, nil
}

// checkResponse turns a 4xx/5xx answer into a RemoteError. Any other non-2xx
// status is not part of the protocol.
func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode < 400:
		return bridgeerrors.Newf(bridgeerrors.Protocol, "unexpected status %d from %s", resp.StatusCode, resp.Request.URL.Redacted())
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &RemoteError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

type download struct {
	resp    *http.Response
	checked bool
	status  error
	readErr error
}

func (d *download) Read(p []byte) (int, error) {
	if d.status != nil {
		return 0, io.EOF
	}
	n, err := d.resp.Body.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		d.readErr = err
	}
	return n, err
}

func (d *download) Write([]byte) (int, error) {
	return 0, errWrongDirection
}

func (d *download) CheckConnectivity() error {
	if !d.checked {
		d.checked = true
		d.status = checkResponse(d.resp)
	}
	if d.status != nil {
		return d.status
	}
	return d.readErr
}

func (d *download) Close() error {
	return d.resp.Body.Close()
}

type result struct {
	resp *http.Response
	err  error
}

type upload struct {
	pw      *io.PipeWriter
	done    chan result
	settled bool
	resp    *http.Response
	status  error
	closed  bool
}

func (u *upload) Read([]byte) (int, error) {
	return 0, errWrongDirection
}

// Write feeds the request body. The pipe only closes once the request has
// ended, so a failed write waits for the answer and returns it instead.
func (u *upload) Write(p []byte) (int, error) {
	n, err := u.pw.Write(p)
	if err == nil {
		return n, nil
	}
	if !u.settled {
		u.settle(<-u.done)
	}
	if u.status != nil {
		return n, u.status
	}
	return n, err
}

func (u *upload) settle(r result) {
	u.settled = true
	u.resp = r.resp
	if r.err != nil {
		u.status = r.err
		return
	}
	u.status = checkResponse(r.resp)
}

// CheckConnectivity reports a request that already failed without waiting for
// one still in flight.
func (u *upload) CheckConnectivity() error {
	if !u.settled {
		select {
		case r := <-u.done:
			u.settle(r)
		default:
			return nil
		}
	}
	return u.status
}

func (u *upload) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	_ = u.pw.Close()
	if !u.settled {
		u.settle(<-u.done)
	}
	if u.resp == nil {
		return u.status
	}
	defer u.resp.Body.Close()
	if u.status != nil {
		return u.status
	}
	_, err := io.Copy(io.Discard, u.resp.Body)
	return err
}
