package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pxfbridge/cli/internal/bridge"
	"pxfbridge/cli/internal/bridge/headers"
	"pxfbridge/cli/internal/bridge/model"
	"pxfbridge/cli/internal/bridge/uri"
	bridgeerrors "pxfbridge/cli/internal/errors"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "gpadmin", want: "gpadmin"},
		{in: "hdfs:text", want: "hdfs%3Atext"},
		{in: "a b&c=d", want: "a%20b%26c%3Dd"},
		{in: "ünï", want: "%C3%BCn%C3%AF"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeValue(tt.in))
		})
	}
}

func TestApplyHeaders_VerbatimKeys(t *testing.T) {
	h := headers.New()
	h.Append("X-GP-ATTR-NAME0", "order id")
	h.Append(headers.HeaderProjIndex, "0")
	h.Append(headers.HeaderProjIndex, "2")
	h.Override(headers.HeaderConnection, "close")

	req := httptest.NewRequest(http.MethodGet, "http://localhost:5888/pxf/read", nil)
	applyHeaders(req, h)

	assert.Equal(t, []string{"order%20id"}, req.Header["X-GP-ATTR-NAME0"])
	assert.Equal(t, []string{"0", "2"}, req.Header["X-GP-ATTRS-PROJ-IDX"])
	assert.Nil(t, req.Header["X-Gp-Attr-Name0"])
	assert.True(t, req.Close)
}

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, uri.Builder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return srv, uri.Builder{Host: u.Hostname(), Port: port, Prefix: "pxf"}
}

func request() headers.Request {
	return headers.Request{
		Session:  model.SessionContext{User: "gpadmin", SegmentCount: 1, TransactionID: "9"},
		Location: model.Location{Resource: "data/orders", URI: "pxf://data/orders?PROFILE=hdfs:text"},
	}
}

func TestDownload_StreamsBody(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	seen := make(chan string, 1)
	srv, svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get(headers.HeaderUser) + " " + r.URL.Path
		_, _ = io.WriteString(w, "1|alice\n2|bob\n")
	})
	defer srv.Close()

	c := bridge.NewContext(New(), bridge.Config{Service: svc})
	require.NoError(t, c.ImportStart(context.Background(), request()))

	var out []byte
	buf := make([]byte, 4)
	for {
		n, err := c.Read(buf, 0)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}
	c.Release()

	assert.Equal(t, "1|alice\n2|bob\n", string(out))
	assert.Equal(t, "gpadmin /pxf/read", <-seen)
	assert.True(t, c.Completed())
}

func TestDownload_RemoteError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "profile not found", http.StatusInternalServerError)
	})
	defer srv.Close()

	c := bridge.NewContext(New(), bridge.Config{Service: svc})
	err := c.ImportStart(context.Background(), request())
	c.Release()

	require.Error(t, err)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	assert.Equal(t, "profile not found", remote.Message)
}

func TestUpload_SendsBody(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	received := make(chan string, 1)
	srv, svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r.Method + " " + r.URL.Path + " " + string(body)
	})
	defer srv.Close()

	c := bridge.NewContext(New(), bridge.Config{Service: svc})
	require.NoError(t, c.ExportStart(context.Background(), request()))
	_, err := c.Write([]byte("1|alice\n"))
	require.NoError(t, err)
	_, err = c.Write([]byte("2|bob\n"))
	require.NoError(t, err)
	require.NoError(t, c.FinishUpload())
	c.Release()

	assert.Equal(t, "POST /pxf/write 1|alice\n2|bob\n", <-received)
}

func TestUpload_RemoteRejects(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "target directory is read-only", http.StatusForbidden)
	})
	defer srv.Close()

	c := bridge.NewContext(New(), bridge.Config{Service: svc})
	require.NoError(t, c.ExportStart(context.Background(), request()))
	_, err := c.Write([]byte("x\n"))
	require.NoError(t, err)

	err = c.FinishUpload()
	c.Release()

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusForbidden, remote.StatusCode)
}

func TestUpload_RejectedBeforeBodyRead(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad profile", http.StatusBadRequest)
	})
	defer srv.Close()

	c := bridge.NewContext(New(), bridge.Config{Service: svc})
	require.NoError(t, c.ExportStart(context.Background(), request()))

	chunk := make([]byte, 64<<10)
	var err error
	for i := 0; i < 256 && err == nil; i++ {
		_, err = c.Write(chunk)
	}
	c.Release()

	require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusBadRequest, remote.StatusCode)
	assert.Equal(t, "bad profile", remote.Message)
}

func TestDownload_UnexpectedStatus(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	})
	defer srv.Close()

	c := bridge.NewContext(New(), bridge.Config{Service: svc})
	err := c.ImportStart(context.Background(), request())
	c.Release()

	require.ErrorIs(t, err, bridgeerrors.ErrConnectivity)
	assert.ErrorIs(t, err, bridgeerrors.ErrProtocol)
	assert.Equal(t, bridgeerrors.Connectivity, bridgeerrors.KindOf(err))
}

func TestUpload_ReleaseWithoutFinish(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, svc := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
	})
	defer srv.Close()

	c := bridge.NewContext(New(), bridge.Config{Service: svc})
	require.NoError(t, c.ExportStart(context.Background(), request()))
	c.Release()
	c.Release()
}
