package bridge

import (
	stderrors "errors"
	"io"

	bridgeerrors "pxfbridge/cli/internal/errors"
	"pxfbridge/cli/internal/logging"
)

// Read fills buf with row bytes. It returns once at least minLen bytes are in
// buf, or earlier when the stream ends; minLen <= 0 means len(buf).
//
// A call that comes up short, or whose transport read failed, marks the
// context completed and checks the connection. 0 with a nil error is a clean
// end of stream.
func (c *Context) Read(buf []byte, minLen int) (int, error) {
	if c.state != Active || c.upload {
		return 0, ErrNotActive
	}
	if c.completed {
		return 0, nil
	}
	if minLen <= 0 || minLen > len(buf) {
		minLen = len(buf)
	}

	var (
		n       int
		readErr error
		ended   bool
	)
	for n < minLen {
		m, err := c.transport.Read(buf[n:])
		n += m
		if err == nil && m > 0 {
			continue
		}
		if err != nil && !stderrors.Is(err, io.EOF) {
			readErr = err
		}
		ended = true
		break
	}

	if readErr != nil || (ended && n < minLen) {
		c.completed = true
		if err := c.transport.CheckConnectivity(); err != nil {
			return n, bridgeerrors.Wrap(bridgeerrors.Connectivity, "transport ended abnormally", err)
		}
		if readErr != nil {
			return n, bridgeerrors.Wrap(bridgeerrors.Connectivity, "read from remote service failed", readErr)
		}
	}

	logging.Trace().
		Int("segment", c.segment).
		Int("bytes", n).
		Str("resource", c.resource()).
		Msg("bridge read")
	return n, nil
}

// Write hands buf to the transport in a single call. A failed write reports
// the connection's error when it has one.
func (c *Context) Write(buf []byte) (int, error) {
	if c.state != Active || !c.upload || c.transport == nil {
		return 0, ErrNotActive
	}
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := c.transport.Write(buf)
	if err != nil {
		if cerr := c.transport.CheckConnectivity(); cerr != nil {
			return n, bridgeerrors.Wrap(bridgeerrors.Connectivity, "remote service rejected the write", cerr)
		}
		return n, bridgeerrors.Wrap(bridgeerrors.Connectivity, "write to remote service failed", err)
	}
	logging.Trace().
		Int("segment", c.segment).
		Int("bytes", n).
		Str("resource", c.resource()).
		Msg("bridge write")
	return n, nil
}

func (c *Context) resource() string {
	if c.location == nil {
		return ""
	}
	return c.location.Resource
}
