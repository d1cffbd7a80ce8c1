// File: cookie.go
// Title: Response Cookies
// Description: Cookie type and its Set-Cookie header rendering.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-11
// Modified: 2026-03-11
//
// Change History:
// - 2026-03-11 v0.1.0: Initial implementation

package web

import (
	"strconv"
	"strings"
)

// Cookie is an outgoing response cookie
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	MaxAge   *int // nil omits the attribute
	HTTPOnly bool
}

// NewCookie creates a cookie with only a name and value
func NewCookie(name, value string) *Cookie {
	return &Cookie{Name: name, Value: value}
}

// MaxAgeSeconds returns a pointer suitable for Cookie.MaxAge
func MaxAgeSeconds(seconds int) *int {
	return &seconds
}

// headerValue renders the Set-Cookie value, e.g.
// sid="ABC"; Domain=localhost; Path=/; HttpOnly
func (c *Cookie) headerValue() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteString(`="`)
	sb.WriteString(c.Value)
	sb.WriteByte('"')
	if c.Domain != "" {
		sb.WriteString("; Domain=")
		sb.WriteString(c.Domain)
	}
	if c.Path != "" {
		sb.WriteString("; Path=")
		sb.WriteString(c.Path)
	}
	if c.MaxAge != nil {
		sb.WriteString("; Max-Age=")
		sb.WriteString(strconv.Itoa(*c.MaxAge))
	}
	if c.HTTPOnly {
		sb.WriteString("; HttpOnly")
	}
	return sb.String()
}
