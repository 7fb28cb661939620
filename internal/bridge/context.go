package bridge

import (
	"context"
	stderrors "errors"

	"github.com/hashicorp/go-multierror"

	"pxfbridge/cli/internal/bridge/headers"
	"pxfbridge/cli/internal/bridge/model"
	"pxfbridge/cli/internal/bridge/uri"
	bridgeerrors "pxfbridge/cli/internal/errors"
	"pxfbridge/cli/internal/logging"
)

// State is the lifecycle stage of a Context.
type State int

const (
	Uninitialized State = iota
	Built
	Active
	Released
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Built:
		return "built"
	case Active:
		return "active"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// ErrNotActive is returned by Read and Write outside the active state.
var ErrNotActive = stderrors.New("bridge context is not active")

// Config selects the service endpoint for a Context.
type Config struct {
	Service uri.Builder
	// LegacyURI puts the resource path into the endpoint URI.
	LegacyURI bool
}

// Context is the state of one scan or insert. It is not safe for concurrent
// use; each scan or insert owns its own.
type Context struct {
	cfg    Config
	opener Opener

	state     State
	uri       string
	headers   *headers.Headers
	transport Transport
	completed bool
	upload    bool

	location *model.Location
	filter   string
	segment  int
}

// NewContext returns an uninitialized context that opens exchanges through opener.
func NewContext(opener Opener, cfg Config) *Context {
	return &Context{cfg: cfg, opener: opener}
}

// State returns the current lifecycle stage.
func (c *Context) State() State { return c.state }

// URI returns the endpoint URI, empty before the context is built.
func (c *Context) URI() string { return c.uri }

// Headers returns the header set sent with the request, nil before it is built.
func (c *Context) Headers() *headers.Headers { return c.headers }

// Completed reports whether the read side reached the end of the stream.
func (c *Context) Completed() bool { return c.completed }

// ImportStart builds the read URI and headers, opens the download and probes
// the connection so early failures surface before any row is consumed.
func (c *Context) ImportStart(ctx context.Context, req headers.Request) error {
	if c.state != Uninitialized {
		return bridgeerrors.Newf(bridgeerrors.Configuration, "cannot start import in state %s", c.state)
	}
	if c.cfg.LegacyURI {
		c.uri = c.cfg.Service.LegacyRead(req.Location.Resource)
	} else {
		c.uri = c.cfg.Service.Read()
	}
	logging.Debug().Str("uri", c.uri).Msg("uri for read")

	if err := c.build(req); err != nil {
		return err
	}

	t, err := c.opener.OpenDownload(ctx, c.uri, c.headers)
	if err != nil {
		return bridgeerrors.Wrap(bridgeerrors.Connectivity, "open download from "+c.uri, err)
	}
	c.transport = t
	c.state = Active

	if err := t.CheckConnectivity(); err != nil {
		return bridgeerrors.Wrap(bridgeerrors.Connectivity, "remote service rejected the read", err)
	}
	return nil
}

// ExportStart builds the write URI and headers and opens the upload. Writes
// carry neither projection nor filter information.
func (c *Context) ExportStart(ctx context.Context, req headers.Request) error {
	if c.state != Uninitialized {
		return bridgeerrors.Newf(bridgeerrors.Configuration, "cannot start export in state %s", c.state)
	}
	if c.cfg.LegacyURI {
		c.uri = c.cfg.Service.LegacyWrite(req.Location.Resource)
	} else {
		c.uri = c.cfg.Service.Write()
	}
	logging.Debug().
		Str("uri", c.uri).
		Str("resource", req.Location.Resource).
		Msg("uri for write")

	req.Projection = nil
	req.Filter = ""
	if err := c.build(req); err != nil {
		return err
	}

	t, err := c.opener.OpenUpload(ctx, c.uri, c.headers)
	if err != nil {
		return bridgeerrors.Wrap(bridgeerrors.Connectivity, "open upload to "+c.uri, err)
	}
	c.transport = t
	c.upload = true
	c.state = Active
	return nil
}

func (c *Context) build(req headers.Request) error {
	h, err := headers.Build(req)
	if err != nil {
		return err
	}
	loc := req.Location
	c.location = &loc
	c.filter = req.Filter
	c.segment = req.Session.SegmentID
	c.headers = h
	c.state = Built
	return nil
}

// FinishUpload closes an upload and returns the remote service's verdict on
// the data sent. Release afterwards does not touch the transport again.
func (c *Context) FinishUpload() error {
	if c.state != Active || !c.upload {
		return ErrNotActive
	}
	t := c.transport
	c.transport = nil
	if err := t.Close(); err != nil {
		return bridgeerrors.Wrap(bridgeerrors.Connectivity, "upload to "+c.uri+" failed", err)
	}
	return nil
}

// Release tears the context down. It never fails, may be called more than
// once and tolerates a context that was only partly built.
func (c *Context) Release() {
	if c == nil || c.state == Released {
		return
	}

	var result *multierror.Error
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		c.transport = nil
	}
	if c.headers != nil {
		c.headers.Reset()
		c.headers = nil
	}
	c.uri = ""
	c.location = nil
	c.filter = ""
	c.state = Released

	if err := result.ErrorOrNil(); err != nil {
		logging.Debug().Err(err).Msg("ignoring errors during bridge release")
	}
}
