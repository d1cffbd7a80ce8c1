// File: lexer.go
// Title: SmartScript Lexical Analyzer
// Description: Converts SmartScript documents into tokens. The lexer has a
//              text mode and a tag mode; the consumer switches between them
//              after every tag boundary.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-06
//
// Change History:
// - 2026-03-04 v0.1.0: Initial lexer implementation
// - 2026-03-06 v0.1.1: Negative numbers, error positions

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// LexError reports malformed input at a source position
type LexError struct {
	Message string
	Line    int
	Column  int
}

func (le *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", le.Line, le.Column, le.Message)
}

// Lexer performs lexical analysis of SmartScript input
type Lexer struct {
	input  []rune
	pos    int // index of the next unread rune
	line   int // line of the next unread rune (1-based)
	column int // column of the next unread rune (1-based)

	state         LexerState
	expectTagName bool // the next tag-mode token is the tag name
	finished      bool // EOF was already returned
}

// NewLexer creates a new lexer in text mode
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  []rune(input),
		line:   1,
		column: 1,
		state:  StateText,
	}
}

// SetState switches the lexer mode
func (l *Lexer) SetState(state LexerState) {
	l.state = state
}

// State returns the current lexer mode
func (l *Lexer) State() LexerState {
	return l.state
}

// NextToken returns the next token. Once EOF has been returned, further calls
// fail with a LexError.
func (l *Lexer) NextToken() (Token, error) {
	if l.finished {
		return Token{}, l.errorf(l.line, l.column, "no tokens available after EOF")
	}
	if l.state == StateTag {
		return l.nextTagToken()
	}
	return l.nextTextToken()
}

// nextTextToken reads document text up to the next unescaped "{$"
func (l *Lexer) nextTextToken() (Token, error) {
	line, column := l.line, l.column

	if l.atEnd() {
		l.finished = true
		return Token{Type: TokenEOF, Line: line, Column: column}, nil
	}

	if l.peek(0) == '{' && l.peek(1) == '$' {
		l.advance()
		l.advance()
		l.expectTagName = true
		return Token{Type: TokenTagOpen, Value: "{$", Line: line, Column: column}, nil
	}

	var sb strings.Builder
	for !l.atEnd() {
		ch := l.peek(0)
		if ch == '{' && l.peek(1) == '$' {
			break
		}
		if ch == '\\' {
			escLine, escColumn := l.line, l.column
			l.advance()
			if l.atEnd() {
				return Token{}, l.errorf(escLine, escColumn, "escape sequence at end of input")
			}
			next := l.peek(0)
			if next != '\\' && next != '{' {
				return Token{}, l.errorf(escLine, escColumn, "invalid escape sequence '\\%c' in text", next)
			}
			sb.WriteRune(next)
			l.advance()
			continue
		}
		sb.WriteRune(ch)
		l.advance()
	}

	return Token{Type: TokenText, Value: sb.String(), Line: line, Column: column}, nil
}

// nextTagToken reads one whitespace separated token inside a tag
func (l *Lexer) nextTagToken() (Token, error) {
	l.skipWhitespace()
	line, column := l.line, l.column

	if l.atEnd() {
		return Token{}, l.errorf(line, column, "unterminated tag")
	}

	ch := l.peek(0)

	if l.expectTagName {
		l.expectTagName = false
		switch {
		case ch == '=':
			l.advance()
			return Token{Type: TokenTagName, Value: "=", Line: line, Column: column}, nil
		case isLetter(ch):
			return Token{Type: TokenTagName, Value: l.readIdentifier(), Line: line, Column: column}, nil
		default:
			return Token{}, l.errorf(line, column, "invalid tag name starting with '%c'", ch)
		}
	}

	switch {
	case ch == '$':
		if l.peek(1) != '}' {
			return Token{}, l.errorf(line, column, "expected '$}' to close tag")
		}
		l.advance()
		l.advance()
		return Token{Type: TokenTagClose, Value: "$}", Line: line, Column: column}, nil

	case ch == '"':
		value, err := l.readString()
		if err != nil {
			return Token{}, err
		}
		return Token{Type: TokenString, Value: value, Line: line, Column: column}, nil

	case ch == '@':
		l.advance()
		if l.atEnd() || !isLetter(l.peek(0)) {
			return Token{}, l.errorf(line, column, "invalid function name")
		}
		return Token{Type: TokenFunction, Value: l.readIdentifier(), Line: line, Column: column}, nil

	case isLetter(ch):
		return Token{Type: TokenVariable, Value: l.readIdentifier(), Line: line, Column: column}, nil

	case isDigit(ch), ch == '-' && isDigit(l.peek(1)):
		return l.readNumber(line, column)

	case strings.ContainsRune("+-*/^", ch):
		l.advance()
		return Token{Type: TokenOperator, Value: string(ch), Line: line, Column: column}, nil
	}

	return Token{}, l.errorf(line, column, "unexpected character '%c' in tag", ch)
}

// readIdentifier reads a letter followed by letters, digits and underscores
func (l *Lexer) readIdentifier() string {
	start := l.pos
	l.advance()
	for !l.atEnd() {
		ch := l.peek(0)
		if !isLetter(ch) && !isDigit(ch) && ch != '_' {
			break
		}
		l.advance()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads an optionally negative integer or decimal literal
func (l *Lexer) readNumber(line, column int) (Token, error) {
	start := l.pos
	if l.peek(0) == '-' {
		l.advance()
	}
	for isDigit(l.peek(0)) {
		l.advance()
	}

	isDouble := false
	if l.peek(0) == '.' {
		if !isDigit(l.peek(1)) {
			return Token{}, l.errorf(line, column, "malformed number '%s.'", string(l.input[start:l.pos]))
		}
		isDouble = true
		l.advance()
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}

	text := string(l.input[start:l.pos])
	if isDouble {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return Token{}, l.errorf(line, column, "malformed number '%s'", text)
		}
		return Token{Type: TokenDouble, Value: text, Line: line, Column: column}, nil
	}
	if _, err := strconv.ParseInt(text, 10, 32); err != nil {
		return Token{}, l.errorf(line, column, "malformed number '%s'", text)
	}
	return Token{Type: TokenInteger, Value: text, Line: line, Column: column}, nil
}

// readString reads a double-quoted string and resolves its escapes
func (l *Lexer) readString() (string, error) {
	line, column := l.line, l.column
	l.advance() // opening quote

	var sb strings.Builder
	for {
		if l.atEnd() {
			return "", l.errorf(line, column, "unterminated string")
		}
		ch := l.peek(0)
		switch ch {
		case '"':
			l.advance()
			return sb.String(), nil
		case '\\':
			escLine, escColumn := l.line, l.column
			l.advance()
			if l.atEnd() {
				return "", l.errorf(line, column, "unterminated string")
			}
			switch esc := l.peek(0); esc {
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			case 'n':
				sb.WriteRune('\n')
			case 'r':
				sb.WriteRune('\r')
			case 't':
				sb.WriteRune('\t')
			default:
				return "", l.errorf(escLine, escColumn, "invalid escape sequence '\\%c' in string", esc)
			}
			l.advance()
		default:
			sb.WriteRune(ch)
			l.advance()
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.peek(0)) {
		l.advance()
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// peek returns the rune offset positions ahead, or 0 past the end
func (l *Lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.atEnd() {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) errorf(line, column int, format string, args ...interface{}) *LexError {
	return &LexError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
