package server

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"crlf", "GET / HTTP/1.1\r\nHost: a\r\n\r\nBODY", "GET / HTTP/1.1\r\nHost: a\r\n\r\n"},
		{"lf", "GET / HTTP/1.1\nHost: a\n\nBODY", "GET / HTTP/1.1\nHost: a\n\n"},
		{"mixed", "GET / HTTP/1.1\r\nHost: a\r\n\nBODY", "GET / HTTP/1.1\r\nHost: a\r\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readHeader(bufio.NewReader(strings.NewReader(tt.input)), 1024)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestReadHeader_Errors(t *testing.T) {
	_, err := readHeader(bufio.NewReader(strings.NewReader("")), 1024)
	assert.ErrorIs(t, err, errEmptyRequest)

	_, err = readHeader(bufio.NewReader(strings.NewReader(strings.Repeat("a", 100))), 10)
	assert.ErrorIs(t, err, errHeaderTooLarge)

	for _, partial := range []string{"G", "GET / HTTP/1.1\r\n", "GET / HTTP/1.1\r\nHost: x\r\n\r"} {
		_, err = readHeader(bufio.NewReader(strings.NewReader(partial)), 1024)
		assert.ErrorIs(t, err, errIncompleteRequest, "input %q", partial)
	}
}

func TestParseRequest(t *testing.T) {
	raw := "GET /pages/a%20b.html?x=1&name=Ana+Mari%C4%87&flag HTTP/1.1\r\n" +
		"Host: example.com:8080\r\n" +
		"Cookie: theme=dark; sid=\"ABCDEFGHIJKLMNOPQRST\"\r\n" +
		"X-Long: first\r\n" +
		"  second\r\n" +
		"\r\n"

	req, err := parseRequest([]byte(raw), "localhost")
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "HTTP/1.1", req.Version)
	assert.Equal(t, "/pages/a b.html", req.Path)
	assert.Equal(t, map[string]string{"x": "1", "name": "Ana Marić", "flag": ""}, req.Params)
	assert.Equal(t, "example.com", req.Host)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRST", req.Cookies["sid"])
	assert.Equal(t, "dark", req.Cookies["theme"])

	long, ok := req.Header("x-long")
	assert.True(t, ok)
	assert.Equal(t, "first second", long)
}

func TestParseRequest_DefaultHost(t *testing.T) {
	req, err := parseRequest([]byte("GET / HTTP/1.0\n\n"), "fallback.local")
	require.NoError(t, err)
	assert.Equal(t, "fallback.local", req.Host)
	assert.Empty(t, req.Params)
}

func TestParseRequest_Latin1Header(t *testing.T) {
	req, err := parseRequest([]byte("GET / HTTP/1.1\r\nX-Name: Jos\xe9\r\n\r\n"), "h")
	require.NoError(t, err)
	v, _ := req.Header("X-Name")
	assert.Equal(t, "José", v)
}

func TestParseRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"blank", "\r\n\r\n"},
		{"short request line", "GET /\r\n\r\n"},
		{"post", "POST / HTTP/1.1\r\n\r\n"},
		{"http2", "GET / HTTP/2.0\r\n\r\n"},
		{"relative target", "GET index.html HTTP/1.1\r\n\r\n"},
		{"header without colon", "GET / HTTP/1.1\r\nbroken\r\n\r\n"},
		{"bad escape", "GET /?a=%zz HTTP/1.1\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRequest([]byte(tt.raw), "h")
			assert.Error(t, err)
		})
	}
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "example.com", stripPort("example.com:80"))
	assert.Equal(t, "example.com", stripPort("example.com"))
	assert.Equal(t, "::1", stripPort("[::1]:5721"))
	assert.Equal(t, "::1", stripPort("[::1]"))
}
