// File: token.go
// Title: SmartScript Tokens
// Description: Token types produced by the SmartScript lexer.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-04
//
// Change History:
// - 2026-03-04 v0.1.0: Initial token definitions

package parser

import "fmt"

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota

	// Text mode
	TokenText    // literal document text
	TokenTagOpen // {$

	// Tag mode
	TokenTagName  // FOR, END, =
	TokenTagClose // $}
	TokenVariable // i, counter_2
	TokenString   // "string literal"
	TokenInteger  // 42, -7
	TokenDouble   // 3.14, -0.5
	TokenFunction // @sin
	TokenOperator // + - * / ^
)

// Token represents a lexical token with position information
type Token struct {
	Type   TokenType // Token type
	Value  string    // Token text (unescaped for text and strings, name without @ for functions)
	Line   int       // Line number (1-based)
	Column int       // Column number (1-based)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenText:
		return "TEXT"
	case TokenTagOpen:
		return "TAG_OPEN"
	case TokenTagName:
		return "TAG_NAME"
	case TokenTagClose:
		return "TAG_CLOSE"
	case TokenVariable:
		return "VARIABLE"
	case TokenString:
		return "STRING"
	case TokenInteger:
		return "INTEGER"
	case TokenDouble:
		return "DOUBLE"
	case TokenFunction:
		return "FUNCTION"
	case TokenOperator:
		return "OPERATOR"
	default:
		return "UNKNOWN"
	}
}

// LexerState selects how the lexer reads the input
type LexerState int

const (
	// StateText reads document text up to the next tag opening
	StateText LexerState = iota
	// StateTag reads the whitespace separated contents of a tag
	StateTag
)

// String returns the state name
func (s LexerState) String() string {
	switch s {
	case StateText:
		return "TEXT"
	case StateTag:
		return "TAG"
	default:
		return "UNKNOWN"
	}
}
