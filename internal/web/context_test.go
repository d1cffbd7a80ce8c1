package web

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_DefaultHeader(t *testing.T) {
	var buf bytes.Buffer
	rc := NewRequestContext(&buf, nil, nil, nil)

	require.NoError(t, rc.WriteText("hi"))
	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: text/html; charset=UTF-8\r\n\r\nhi", buf.String())
	assert.True(t, rc.HeaderGenerated())
	assert.Equal(t, int64(2), rc.BytesWritten())
}

func TestRequestContext_FullHeader(t *testing.T) {
	var buf bytes.Buffer
	rc := NewRequestContext(&buf, nil, nil, []*Cookie{
		{Name: "sid", Value: "ABC", Domain: "localhost", Path: "/", HTTPOnly: true},
	}, WithServerHeader("smartweb/test"))

	require.NoError(t, rc.SetStatus(404, "Not Found"))
	require.NoError(t, rc.SetMimeType("image/png"))
	require.NoError(t, rc.SetContentLength(3))
	require.NoError(t, rc.AddCookie(&Cookie{Name: "k", Value: "v", MaxAge: MaxAgeSeconds(60)}))

	_, err := rc.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	expected := "HTTP/1.1 404 Not Found\r\n" +
		"Server: smartweb/test\r\n" +
		"Content-Type: image/png\r\n" +
		"Content-Length: 3\r\n" +
		"Set-Cookie: sid=\"ABC\"; Domain=localhost; Path=/; HttpOnly\r\n" +
		"Set-Cookie: k=\"v\"; Max-Age=60\r\n" +
		"\r\n\x01\x02\x03"
	assert.Equal(t, expected, buf.String())
}

func TestRequestContext_SettersFailAfterHeader(t *testing.T) {
	rc := NewRequestContext(&bytes.Buffer{}, nil, nil, nil)

	require.NoError(t, rc.SetEncoding("UTF-8"))
	require.NoError(t, rc.SetStatusCode(201))
	require.NoError(t, rc.SetStatusText("Created"))
	require.NoError(t, rc.SetMimeType("text/plain"))
	require.NoError(t, rc.SetContentLength(0))
	require.NoError(t, rc.AddCookie(NewCookie("a", "b")))

	require.NoError(t, rc.WriteHeader())

	setters := map[string]func() error{
		"encoding":       func() error { return rc.SetEncoding("UTF-8") },
		"status code":    func() error { return rc.SetStatusCode(500) },
		"status text":    func() error { return rc.SetStatusText("x") },
		"mime type":      func() error { return rc.SetMimeType("text/css") },
		"content length": func() error { return rc.SetContentLength(1) },
		"cookie":         func() error { return rc.AddCookie(NewCookie("c", "d")) },
	}
	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, set(), ErrHeaderGenerated)
		})
	}
	assert.Equal(t, 201, rc.StatusCode())
}

func TestRequestContext_HeaderWrittenOnce(t *testing.T) {
	var buf bytes.Buffer
	rc := NewRequestContext(&buf, nil, nil, nil)
	require.NoError(t, rc.SetMimeType("text/plain"))
	require.NoError(t, rc.WriteText("a"))
	require.NoError(t, rc.WriteText("b"))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("HTTP/1.1")))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\r\n\r\nab")))
}

func TestRequestContext_BodyEncoding(t *testing.T) {
	var buf bytes.Buffer
	rc := NewRequestContext(&buf, nil, nil, nil)
	require.NoError(t, rc.SetEncoding("ISO-8859-2"))
	require.NoError(t, rc.WriteText("čć"))

	header, body, found := bytes.Cut(buf.Bytes(), []byte("\r\n\r\n"))
	require.True(t, found)
	assert.Contains(t, string(header), "charset=ISO-8859-2")
	assert.Equal(t, []byte{0xE8, 0xE6}, body)
}

func TestRequestContext_UnknownEncoding(t *testing.T) {
	rc := NewRequestContext(&bytes.Buffer{}, nil, nil, nil)
	assert.Error(t, rc.SetEncoding("no-such-charset"))
	assert.Equal(t, DefaultEncoding, rc.Encoding())
}

func TestRequestContext_HeaderIsLatin1(t *testing.T) {
	var buf bytes.Buffer
	rc := NewRequestContext(&buf, nil, nil, nil)
	require.NoError(t, rc.SetStatusText("Grüße"))
	require.NoError(t, rc.WriteHeader())
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("HTTP/1.1 200 Gr\xfc\xdfe\r\n")))
}

func TestRequestContext_Parameters(t *testing.T) {
	params := map[string]string{"b": "2", "a": "1"}
	store := NewParamStore()
	store.Set("color", "red")

	rc := NewRequestContext(nil, params, store, nil, WithSessionID("SID"))
	params["a"] = "changed"

	v, ok := rc.Parameter("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = rc.Parameter("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, rc.ParameterNames())

	names := rc.ParameterNames()
	names[0] = "zzz"
	assert.Equal(t, []string{"a", "b"}, rc.ParameterNames())

	rc.SetTemporaryParameter("t", "x")
	v, ok = rc.TemporaryParameter("t")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.Equal(t, []string{"t"}, rc.TemporaryParameterNames())
	rc.RemoveTemporaryParameter("t")
	_, ok = rc.TemporaryParameter("t")
	assert.False(t, ok)

	v, ok = rc.PersistentParameter("color")
	assert.True(t, ok)
	assert.Equal(t, "red", v)
	rc.SetPersistentParameter("size", "L")
	got, _ := store.Get("size")
	assert.Equal(t, "L", got)
	assert.Equal(t, []string{"color", "size"}, rc.PersistentParameterNames())
	rc.RemovePersistentParameter("color")
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, "SID", rc.SessionID())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRequestContext_WriteError(t *testing.T) {
	rc := NewRequestContext(failingWriter{}, nil, nil, nil)
	err := rc.WriteText("x")
	require.Error(t, err)
	assert.True(t, IsWriteError(err))
	assert.True(t, rc.HeaderGenerated())
}

func TestRequestContext_Dispatcher(t *testing.T) {
	var dispatched string
	d := DispatcherFunc(func(p string) error {
		dispatched = p
		return nil
	})
	rc := NewRequestContext(nil, nil, nil, nil, WithDispatcher(d))
	require.NotNil(t, rc.Dispatcher())
	require.NoError(t, rc.Dispatcher().Dispatch("/x"))
	assert.Equal(t, "/x", dispatched)
}
