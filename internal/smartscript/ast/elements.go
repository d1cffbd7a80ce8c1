// File: elements.go
// Title: SmartScript Tag Elements
// Description: Defines the element types that appear inside SmartScript tags
//              and their canonical textual form.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-04
//
// Change History:
// - 2026-03-04 v0.1.0: Initial element definitions

package ast

import (
	"strconv"
	"strings"
)

// Element is a single argument of a tag. The set of implementations is closed.
type Element interface {
	// AsText returns the element as it is written in a tag
	AsText() string

	element()
}

// ElementConstantInteger is an integer literal
type ElementConstantInteger struct {
	Value int32
}

// ElementConstantDouble is a decimal literal
type ElementConstantDouble struct {
	Value float64
}

// ElementString is a quoted string literal holding the unescaped text
type ElementString struct {
	Value string
}

// ElementVariable references a loop variable by name
type ElementVariable struct {
	Name string
}

// ElementFunction is a builtin function call, written as @name
type ElementFunction struct {
	Name string
}

// ElementOperator is one of + - * / ^
type ElementOperator struct {
	Symbol string
}

func (e *ElementConstantInteger) AsText() string {
	return strconv.FormatInt(int64(e.Value), 10)
}

// AsText always includes a decimal point so the literal lexes as a double again
func (e *ElementConstantDouble) AsText() string {
	return FormatDoubleLiteral(e.Value)
}

func (e *ElementString) AsText() string {
	return `"` + EscapeString(e.Value) + `"`
}

func (e *ElementVariable) AsText() string { return e.Name }

func (e *ElementFunction) AsText() string { return "@" + e.Name }

func (e *ElementOperator) AsText() string { return e.Symbol }

func (*ElementConstantInteger) element() {}
func (*ElementConstantDouble) element()  {}
func (*ElementString) element()          {}
func (*ElementVariable) element()        {}
func (*ElementFunction) element()        {}
func (*ElementOperator) element()        {}

// FormatDoubleLiteral formats v in plain decimal notation with at least one
// fractional digit
func FormatDoubleLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeString escapes text for use inside a quoted tag string
func EscapeString(s string) string {
	return stringEscaper.Replace(s)
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
)

// EscapeText escapes document text so that it never opens a tag
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// elementsEqual compares two elements by type and value
func elementsEqual(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *ElementConstantInteger:
		y, ok := b.(*ElementConstantInteger)
		return ok && x.Value == y.Value
	case *ElementConstantDouble:
		y, ok := b.(*ElementConstantDouble)
		return ok && x.Value == y.Value
	case *ElementString:
		y, ok := b.(*ElementString)
		return ok && x.Value == y.Value
	case *ElementVariable:
		y, ok := b.(*ElementVariable)
		return ok && x.Name == y.Name
	case *ElementFunction:
		y, ok := b.(*ElementFunction)
		return ok && x.Name == y.Name
	case *ElementOperator:
		y, ok := b.(*ElementOperator)
		return ok && x.Symbol == y.Symbol
	}
	return false
}
