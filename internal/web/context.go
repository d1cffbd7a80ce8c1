// File: context.go
// Title: Request Context
// Description: RequestContext carries the parameters of one request and
//              writes its response. Header fields stay mutable until the
//              first body write; the header is always sent as ISO-8859-1,
//              text bodies in the configured charset.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-10
// Modified: 2026-03-12
//
// Change History:
// - 2026-03-10 v0.1.0: Initial implementation
// - 2026-03-12 v0.1.1: Charset handling via x/text, Server header

package web

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrHeaderGenerated is returned by header setters after the first write
var ErrHeaderGenerated = errors.New("response header already generated")

// WriteError wraps a failure of the underlying connection. It is never
// produced by script or worker logic, so callers use it to tell a closed
// client from a failing handler.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "write response: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsWriteError reports whether err is or wraps a *WriteError
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// Response defaults
const (
	DefaultEncoding   = "UTF-8"
	DefaultStatusCode = 200
	DefaultStatusText = "OK"
	DefaultMimeType   = "text/html"
)

// RequestContext is owned by exactly one request and is not safe for
// concurrent use. The persistent parameter store is the exception: it
// belongs to the session and may be shared.
type RequestContext struct {
	out io.Writer

	encoding      string
	bodyEncoding  encoding.Encoding
	statusCode    int
	statusText    string
	mimeType      string
	contentLength *int64
	serverHeader  string
	cookies       []*Cookie

	params     map[string]string
	temporary  map[string]string
	persistent *ParamStore
	sessionID  string
	dispatcher Dispatcher

	headerGenerated bool
	bytesWritten    int64
}

// ContextOption customizes a RequestContext
type ContextOption func(*RequestContext)

// WithSessionID records the session the request belongs to
func WithSessionID(sid string) ContextOption {
	return func(rc *RequestContext) { rc.sessionID = sid }
}

// WithDispatcher sets the dispatcher used for internal forwarding
func WithDispatcher(d Dispatcher) ContextOption {
	return func(rc *RequestContext) { rc.dispatcher = d }
}

// WithServerHeader adds a Server header line to the response
func WithServerHeader(value string) ContextOption {
	return func(rc *RequestContext) { rc.serverHeader = value }
}

// NewRequestContext creates a context writing to out. params is copied; a
// nil persistent store is replaced by an empty one, and nil cookies are
// dropped.
func NewRequestContext(out io.Writer, params map[string]string, persistent *ParamStore, cookies []*Cookie, opts ...ContextOption) *RequestContext {
	if out == nil {
		out = io.Discard
	}
	if persistent == nil {
		persistent = NewParamStore()
	}

	rc := &RequestContext{
		out:          out,
		encoding:     DefaultEncoding,
		bodyEncoding: mustEncoding(DefaultEncoding),
		statusCode:   DefaultStatusCode,
		statusText:   DefaultStatusText,
		mimeType:     DefaultMimeType,
		params:       make(map[string]string, len(params)),
		temporary:    make(map[string]string),
		persistent:   persistent,
	}
	for k, v := range params {
		rc.params[k] = v
	}
	for _, c := range cookies {
		if c != nil {
			rc.cookies = append(rc.cookies, c)
		}
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

func mustEncoding(name string) encoding.Encoding {
	enc, err := htmlindex.Get(name)
	if err != nil {
		panic(err)
	}
	return enc
}

// Header fields

// SetEncoding sets the charset of text bodies. Unknown charset names are
// rejected.
func (rc *RequestContext) SetEncoding(name string) error {
	if rc.headerGenerated {
		return ErrHeaderGenerated
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	rc.encoding = name
	rc.bodyEncoding = enc
	return nil
}

// SetStatusCode sets the response status code
func (rc *RequestContext) SetStatusCode(code int) error {
	if rc.headerGenerated {
		return ErrHeaderGenerated
	}
	rc.statusCode = code
	return nil
}

// SetStatusText sets the reason phrase of the status line
func (rc *RequestContext) SetStatusText(text string) error {
	if rc.headerGenerated {
		return ErrHeaderGenerated
	}
	rc.statusText = text
	return nil
}

// SetStatus sets code and reason phrase together
func (rc *RequestContext) SetStatus(code int, text string) error {
	if err := rc.SetStatusCode(code); err != nil {
		return err
	}
	return rc.SetStatusText(text)
}

// SetMimeType sets the Content-Type media type
func (rc *RequestContext) SetMimeType(mime string) error {
	if rc.headerGenerated {
		return ErrHeaderGenerated
	}
	rc.mimeType = mime
	return nil
}

// SetContentLength adds a Content-Length header
func (rc *RequestContext) SetContentLength(n int64) error {
	if rc.headerGenerated {
		return ErrHeaderGenerated
	}
	rc.contentLength = &n
	return nil
}

// AddCookie queues a Set-Cookie header
func (rc *RequestContext) AddCookie(c *Cookie) error {
	if rc.headerGenerated {
		return ErrHeaderGenerated
	}
	if c != nil {
		rc.cookies = append(rc.cookies, c)
	}
	return nil
}

// Encoding returns the body charset name
func (rc *RequestContext) Encoding() string { return rc.encoding }

// StatusCode returns the response status code
func (rc *RequestContext) StatusCode() int { return rc.statusCode }

// StatusText returns the reason phrase
func (rc *RequestContext) StatusText() string { return rc.statusText }

// MimeType returns the media type
func (rc *RequestContext) MimeType() string { return rc.mimeType }

// HeaderGenerated reports whether the header has been written
func (rc *RequestContext) HeaderGenerated() bool { return rc.headerGenerated }

// BytesWritten returns the number of body bytes written so far
func (rc *RequestContext) BytesWritten() int64 { return rc.bytesWritten }

// Cookies returns the queued response cookies
func (rc *RequestContext) Cookies() []*Cookie {
	out := make([]*Cookie, len(rc.cookies))
	copy(out, rc.cookies)
	return out
}

// Parameters

// Parameter returns a request parameter
func (rc *RequestContext) Parameter(name string) (string, bool) {
	v, ok := rc.params[name]
	return v, ok
}

// ParameterNames returns the request parameter names in sorted order
func (rc *RequestContext) ParameterNames() []string {
	return sortedKeys(rc.params)
}

// TemporaryParameter returns a parameter that lives for this request only
func (rc *RequestContext) TemporaryParameter(name string) (string, bool) {
	v, ok := rc.temporary[name]
	return v, ok
}

// SetTemporaryParameter stores a request scoped parameter
func (rc *RequestContext) SetTemporaryParameter(name, value string) {
	rc.temporary[name] = value
}

// RemoveTemporaryParameter deletes a request scoped parameter
func (rc *RequestContext) RemoveTemporaryParameter(name string) {
	delete(rc.temporary, name)
}

// TemporaryParameterNames returns the temporary parameter names in sorted order
func (rc *RequestContext) TemporaryParameterNames() []string {
	return sortedKeys(rc.temporary)
}

// PersistentParameter returns a session parameter
func (rc *RequestContext) PersistentParameter(name string) (string, bool) {
	return rc.persistent.Get(name)
}

// SetPersistentParameter stores a session parameter
func (rc *RequestContext) SetPersistentParameter(name, value string) {
	rc.persistent.Set(name, value)
}

// RemovePersistentParameter deletes a session parameter
func (rc *RequestContext) RemovePersistentParameter(name string) {
	rc.persistent.Delete(name)
}

// PersistentParameterNames returns the session parameter names in sorted order
func (rc *RequestContext) PersistentParameterNames() []string {
	return rc.persistent.Names()
}

// SessionID returns the id of the owning session, if any
func (rc *RequestContext) SessionID() string { return rc.sessionID }

// Dispatcher returns the dispatcher for internal forwarding, or nil
func (rc *RequestContext) Dispatcher() Dispatcher { return rc.dispatcher }

// SetDispatcher replaces the dispatcher
func (rc *RequestContext) SetDispatcher(d Dispatcher) { rc.dispatcher = d }

// Output

// Write writes raw body bytes, emitting the header first if needed
func (rc *RequestContext) Write(p []byte) (int, error) {
	if err := rc.ensureHeader(); err != nil {
		return 0, err
	}
	n, err := rc.out.Write(p)
	rc.bytesWritten += int64(n)
	if err != nil {
		return n, &WriteError{Err: err}
	}
	return n, nil
}

// WriteText writes s encoded in the configured charset. Characters the
// charset cannot represent are replaced.
func (rc *RequestContext) WriteText(s string) error {
	data, err := encoding.ReplaceUnsupported(rc.bodyEncoding.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("encode body as %s: %w", rc.encoding, err)
	}
	_, err = rc.Write(data)
	return err
}

// WriteHeader emits the header without a body. It is a no-op once the
// header has been generated.
func (rc *RequestContext) WriteHeader() error {
	return rc.ensureHeader()
}

func (rc *RequestContext) ensureHeader() error {
	if rc.headerGenerated {
		return nil
	}
	rc.headerGenerated = true

	header, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes([]byte(rc.renderHeader()))
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if _, err := rc.out.Write(header); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func (rc *RequestContext) renderHeader() string {
	var sb strings.Builder
	sb.WriteString("HTTP/1.1 ")
	sb.WriteString(strconv.Itoa(rc.statusCode))
	sb.WriteByte(' ')
	sb.WriteString(rc.statusText)
	sb.WriteString("\r\n")

	if rc.serverHeader != "" {
		sb.WriteString("Server: ")
		sb.WriteString(rc.serverHeader)
		sb.WriteString("\r\n")
	}

	sb.WriteString("Content-Type: ")
	sb.WriteString(rc.mimeType)
	if strings.HasPrefix(rc.mimeType, "text/") {
		sb.WriteString("; charset=")
		sb.WriteString(rc.encoding)
	}
	sb.WriteString("\r\n")

	if rc.contentLength != nil {
		sb.WriteString("Content-Length: ")
		sb.WriteString(strconv.FormatInt(*rc.contentLength, 10))
		sb.WriteString("\r\n")
	}

	for _, c := range rc.cookies {
		sb.WriteString("Set-Cookie: ")
		sb.WriteString(c.headerValue())
		sb.WriteString("\r\n")
	}

	sb.WriteString("\r\n")
	return sb.String()
}
