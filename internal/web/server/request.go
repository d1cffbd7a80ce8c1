// File: request.go
// Title: SmartWeb Request Parsing
// Description: Byte level header reader and request line, header, query and
//              cookie parsing. Header bytes are decoded as ISO-8859-1.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-13
// Modified: 2026-03-21
//
// Change History:
// - 2026-03-13 v0.1.0: Initial request parser
// - 2026-03-21 v0.1.1: Distinguish incomplete headers

package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var (
	errEmptyRequest      = errors.New("empty request")
	errHeaderTooLarge    = errors.New("request header too large")
	errIncompleteRequest = errors.New("connection closed before end of request header")
)

// request is the parsed request line and header of one connection
type request struct {
	Method  string
	Target  string
	Version string
	Path    string
	Params  map[string]string
	Host    string
	Cookies map[string]string
	Headers []headerField
}

type headerField struct {
	Name  string
	Value string
}

// Header returns the first value of the named header, case-insensitively
func (r *request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// readHeader reads bytes up to and including the blank line that ends the
// header. Both CRLF CRLF and LF LF terminate it.
func readHeader(r io.ByteReader, limit int) ([]byte, error) {
	var buf []byte
	state := 0 // 1: seen \r, 2: seen \r\n, 3: seen \r\n\r, 4: seen \n
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(buf) == 0 {
					return nil, errEmptyRequest
				}
				return nil, errIncompleteRequest
			}
			return nil, err
		}
		if limit > 0 && len(buf) >= limit {
			return nil, errHeaderTooLarge
		}
		buf = append(buf, b)

		switch {
		case b == '\n' && state >= 2:
			return buf, nil
		case b == '\n' && state == 1:
			state = 2
		case b == '\n':
			state = 4
		case b == '\r' && state == 2:
			state = 3
		case b == '\r':
			state = 1
		default:
			state = 0
		}
	}
}

// parseRequest decodes an ISO-8859-1 header block. Continuation lines that
// start with a space or tab are folded into the previous field.
func parseRequest(raw []byte, defaultHost string) (*request, error) {
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(text), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += " " + strings.TrimSpace(line)
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, errEmptyRequest
	}

	parts := strings.Fields(lines[0])
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed request line %q", lines[0])
	}

	req := &request{
		Method:  parts[0],
		Target:  parts[1],
		Version: parts[2],
		Cookies: make(map[string]string),
	}

	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		req.Headers = append(req.Headers, headerField{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	if req.Method != "GET" {
		return nil, fmt.Errorf("unsupported method %q", req.Method)
	}
	if req.Version != "HTTP/1.0" && req.Version != "HTTP/1.1" {
		return nil, fmt.Errorf("unsupported version %q", req.Version)
	}

	rawPath, query, _ := strings.Cut(req.Target, "?")
	if !strings.HasPrefix(rawPath, "/") {
		return nil, fmt.Errorf("request target must be an absolute path: %q", req.Target)
	}
	if req.Path, err = url.PathUnescape(rawPath); err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", rawPath, err)
	}
	if req.Params, err = parseQuery(query); err != nil {
		return nil, err
	}

	req.Host = defaultHost
	if host, ok := req.Header("Host"); ok && host != "" {
		req.Host = stripPort(host)
	}

	for _, h := range req.Headers {
		if strings.EqualFold(h.Name, "Cookie") {
			parseCookies(h.Value, req.Cookies)
		}
	}
	return req, nil
}

// parseQuery splits a=1&b=x%20y. A name without '=' maps to "".
func parseQuery(query string) (map[string]string, error) {
	params := make(map[string]string)
	if query == "" {
		return params, nil
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		n, err := url.QueryUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("invalid query parameter name %q: %w", name, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("invalid query parameter value %q: %w", value, err)
		}
		params[n] = v
	}
	return params, nil
}

// parseCookies adds name=value pairs from a Cookie header; quoted values
// are unquoted
func parseCookies(header string, into map[string]string) {
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		into[strings.TrimSpace(name)] = value
	}
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
