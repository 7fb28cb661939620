package bridge

import (
	"context"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pxfbridge/cli/internal/bridge/headers"
	"pxfbridge/cli/internal/bridge/model"
	"pxfbridge/cli/internal/bridge/uri"
	bridgeerrors "pxfbridge/cli/internal/errors"
)

// fakeTransport replays a fixed list of read chunk sizes.
type fakeTransport struct {
	chunks   []int
	readErr  error
	lastErr  error // returned together with the final chunk
	writeErr error
	checkErr error
	closeErr error

	reads   int
	checks  int
	closes  int
	written [][]byte
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	if f.reads >= len(f.chunks) {
		f.reads++
		if f.readErr != nil {
			return 0, f.readErr
		}
		return 0, io.EOF
	}
	n := f.chunks[f.reads]
	f.reads++
	for i := 0; i < n; i++ {
		p[i] = 'x'
	}
	if f.reads == len(f.chunks) && f.lastErr != nil {
		return n, f.lastErr
	}
	return n, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written = append(f.written, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeTransport) CheckConnectivity() error {
	f.checks++
	return f.checkErr
}

func (f *fakeTransport) Close() error {
	f.closes++
	return f.closeErr
}

type fakeOpener struct {
	transport *fakeTransport
	openErr   error

	uri     string
	headers *headers.Headers
	upload  bool
}

func (o *fakeOpener) OpenDownload(_ context.Context, u string, h *headers.Headers) (Transport, error) {
	o.uri, o.headers = u, h
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.transport, nil
}

func (o *fakeOpener) OpenUpload(_ context.Context, u string, h *headers.Headers) (Transport, error) {
	o.uri, o.headers, o.upload = u, h, true
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.transport, nil
}

func testConfig() Config {
	return Config{Service: uri.Builder{Host: "localhost", Port: 5888, Prefix: "pxf"}}
}

func testRequest() headers.Request {
	return headers.Request{
		Session:  model.SessionContext{User: "gpadmin", SegmentID: 0, SegmentCount: 1, TransactionID: "1"},
		Location: model.Location{Host: "localhost", Port: 5888, Resource: "data/orders", URI: "pxf://data/orders?PROFILE=hdfs:text"},
		Filter:   "a0c25s3dfooo5",
	}
}

// startedRead returns an active read context whose transport yields chunks.
// ImportStart's probe is subtracted from the check count.
func startedRead(t *testing.T, chunks ...int) (*Context, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{chunks: chunks}
	c := NewContext(&fakeOpener{transport: ft}, testConfig())
	require.NoError(t, c.ImportStart(context.Background(), testRequest()))
	require.Equal(t, 1, ft.checks)
	ft.checks = 0
	return c, ft
}

func TestRead_ShortStreamCompletes(t *testing.T) {
	c, ft := startedRead(t, 3, 4, 0)
	buf := make([]byte, 10)

	n, err := c.Read(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.True(t, c.Completed())
	assert.Equal(t, 1, ft.checks)

	n, err = c.Read(buf, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, ft.checks)
}

func TestRead_StopsAtMinLength(t *testing.T) {
	c, ft := startedRead(t, 4, 4, 4)
	buf := make([]byte, 12)

	n, err := c.Read(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.False(t, c.Completed())
	assert.Zero(t, ft.checks)

	n, err = c.Read(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.True(t, c.Completed())
	assert.Equal(t, 1, ft.checks)
}

func TestRead_ConnectivityFailure(t *testing.T) {
	c, ft := startedRead(t, 5)
	ft.checkErr = stderrors.New("remote component error (500): java.io.IOException")

	n, err := c.Read(make([]byte, 10), 0)
	assert.Equal(t, 5, n)
	require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)
	assert.True(t, c.Completed())
}

func TestRead_TransportError(t *testing.T) {
	c, ft := startedRead(t, 2)
	ft.readErr = io.ErrUnexpectedEOF

	_, err := c.Read(make([]byte, 10), 0)
	require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRead_ErrorWithFullBuffer(t *testing.T) {
	c, ft := startedRead(t, 4, 6)
	ft.lastErr = io.ErrUnexpectedEOF

	n, err := c.Read(make([]byte, 10), 0)
	assert.Equal(t, 10, n)
	require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, c.Completed())
	assert.Equal(t, 1, ft.checks)
}

func TestImportStart(t *testing.T) {
	ft := &fakeTransport{}
	op := &fakeOpener{transport: ft}
	c := NewContext(op, testConfig())

	require.NoError(t, c.ImportStart(context.Background(), testRequest()))
	assert.Equal(t, Active, c.State())
	assert.Equal(t, "http://localhost:5888/pxf/read", op.uri)
	assert.False(t, op.upload)
	filter, ok := op.headers.Get(headers.HeaderFilter)
	require.True(t, ok)
	assert.Equal(t, "a0c25s3dfooo5", filter)

	err := c.ImportStart(context.Background(), testRequest())
	assert.ErrorIs(t, err, bridgeerrors.ErrConfiguration)
}

func TestImportStart_ProbeFails(t *testing.T) {
	ft := &fakeTransport{checkErr: stderrors.New("connection refused")}
	c := NewContext(&fakeOpener{transport: ft}, testConfig())

	err := c.ImportStart(context.Background(), testRequest())
	require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)

	c.Release()
	assert.Equal(t, 1, ft.closes)
}

func TestImportStart_LegacyURI(t *testing.T) {
	op := &fakeOpener{transport: &fakeTransport{}}
	cfg := testConfig()
	cfg.LegacyURI = true
	c := NewContext(op, cfg)

	require.NoError(t, c.ImportStart(context.Background(), testRequest()))
	assert.Equal(t, "http://localhost:5888/pxf/data/orders/read", op.uri)
}

func TestExportStart_WriteAndFinish(t *testing.T) {
	ft := &fakeTransport{}
	op := &fakeOpener{transport: ft}
	c := NewContext(op, testConfig())

	req := testRequest()
	req.Projection = &model.ProjectionRequest{Unsupported: true}
	require.NoError(t, c.ExportStart(context.Background(), req))
	assert.True(t, op.upload)
	assert.Equal(t, "http://localhost:5888/pxf/write", op.uri)
	_, ok := op.headers.Get(headers.HeaderFilter)
	assert.False(t, ok)
	hasFilter, _ := op.headers.Get(headers.HeaderHasFilter)
	assert.Equal(t, "0", hasFilter)

	n, err := c.Write([]byte("1|alice\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = c.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, ft.written, 1)

	_, err = c.Read(make([]byte, 4), 0)
	assert.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, c.FinishUpload())
	c.Release()
	assert.Equal(t, 1, ft.closes)
}

func TestWrite_PrefersConnectionError(t *testing.T) {
	rejected := stderrors.New("remote component error (400): bad profile")
	tests := []struct {
		name     string
		checkErr error
		want     error
	}{
		{name: "service answered", checkErr: rejected, want: rejected},
		{name: "no answer yet", want: io.ErrClosedPipe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{writeErr: io.ErrClosedPipe, checkErr: tt.checkErr}
			c := NewContext(&fakeOpener{transport: ft}, testConfig())
			require.NoError(t, c.ExportStart(context.Background(), testRequest()))

			_, err := c.Write([]byte("1|alice\n"))
			require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, ft.checks)
		})
	}
}

func TestFinishUpload_ReportsFailure(t *testing.T) {
	ft := &fakeTransport{closeErr: stderrors.New("remote component error (500)")}
	c := NewContext(&fakeOpener{transport: ft}, testConfig())
	require.NoError(t, c.ExportStart(context.Background(), testRequest()))

	err := c.FinishUpload()
	require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)
	c.Release()
	assert.Equal(t, 1, ft.closes)
}

func TestRelease_Idempotent(t *testing.T) {
	c, ft := startedRead(t, 1)
	ft.closeErr = stderrors.New("already closed")

	c.Release()
	c.Release()

	assert.Equal(t, 1, ft.closes)
	assert.Equal(t, Released, c.State())
	assert.Nil(t, c.Headers())
	assert.Empty(t, c.URI())

	_, err := c.Read(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestRelease_PartiallyBuilt(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*headers.Request, *fakeOpener)
	}{
		{
			name:   "headers failed after uri",
			mutate: func(r *headers.Request, _ *fakeOpener) { r.Session.User = "" },
		},
		{
			name:   "transport never opened",
			mutate: func(_ *headers.Request, o *fakeOpener) { o.openErr = stderrors.New("dial tcp: connection refused") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &fakeOpener{transport: &fakeTransport{}}
			req := testRequest()
			tt.mutate(&req, op)

			c := NewContext(op, testConfig())
			require.Error(t, c.ImportStart(context.Background(), req))
			assert.NotEmpty(t, c.URI())

			assert.NotPanics(t, c.Release)
			assert.NotPanics(t, c.Release)
			assert.Equal(t, Released, c.State())
			assert.Zero(t, op.transport.closes)
		})
	}

	var nilCtx *Context
	assert.NotPanics(t, nilCtx.Release)
	assert.NotPanics(t, NewContext(nil, testConfig()).Release)
}
