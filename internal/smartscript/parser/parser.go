// File: parser.go
// Title: SmartScript Recursive Descent Parser
// Description: Builds a SmartScript document tree from the lexer token stream.
//              Keeps an explicit stack of open containers, validates tag
//              arity and END matching, and reports errors with positions.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-06
//
// Change History:
// - 2026-03-04 v0.1.0: Initial parser implementation
// - 2026-03-06 v0.1.1: Case-insensitive tag names

package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msto63/smartweb/internal/smartscript/ast"
	"github.com/msto63/smartweb/pkg/core/logging"
)

// Tag names
const (
	TagFor  = "FOR"
	TagEcho = "="
	TagEnd  = "END"
)

// Parser implements recursive descent parsing for SmartScript
type Parser struct {
	lexer  *Lexer
	stack  []ast.Container
	logger *logging.Logger
}

// Options configures parser behavior
type Options struct {
	Logger *logging.Logger
}

// ParseError represents a parsing error with position information
type ParseError struct {
	Message string
	Line    int
	Column  int
	Token   Token
}

func (pe *ParseError) Error() string {
	if pe.Token.Type == TokenEOF {
		return fmt.Sprintf("parse error at line %d, column %d: %s (at end of input)",
			pe.Line, pe.Column, pe.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s (near '%s')",
		pe.Line, pe.Column, pe.Message, pe.Token.Value)
}

// New creates a new SmartScript parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Parser{
		logger: opts.Logger.With("component", "smartscript-parser"),
	}
}

// Parse parses a document with a default parser
func Parse(document string) (*ast.DocumentNode, error) {
	return New(Options{}).Parse(document)
}

// Parse parses a SmartScript document and returns its tree
func (p *Parser) Parse(document string) (*ast.DocumentNode, error) {
	p.lexer = NewLexer(document)
	doc := ast.NewDocumentNode()
	p.stack = []ast.Container{doc}

	p.logger.Debug("Starting SmartScript parsing", "length", len(document))

	if err := p.parseDocument(); err != nil {
		p.logger.Debug("SmartScript parsing failed", "error", err.Error())
		return nil, err
	}

	p.logger.Debug("SmartScript parsing completed", "nodes", doc.ChildCount())
	return doc, nil
}

// parseDocument consumes the token stream until EOF
func (p *Parser) parseDocument() error {
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return err
		}

		switch tok.Type {
		case TokenEOF:
			if len(p.stack) > 1 {
				return p.errorAt(tok, "%d unclosed FOR tag(s)", len(p.stack)-1)
			}
			return nil

		case TokenText:
			p.top().AddChild(ast.NewTextNode(tok.Value))

		case TokenTagOpen:
			p.lexer.SetState(StateTag)
			if err := p.parseTag(); err != nil {
				return err
			}
			p.lexer.SetState(StateText)

		default:
			return p.errorAt(tok, "unexpected token %s", tok.Type)
		}
	}
}

// parseTag parses everything between "{$" and "$}"
func (p *Parser) parseTag() error {
	nameTok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	if nameTok.Type != TokenTagName {
		return p.errorAt(nameTok, "expected tag name")
	}

	switch strings.ToUpper(nameTok.Value) {
	case TagFor:
		return p.parseFor(nameTok)
	case TagEcho:
		return p.parseEcho()
	case TagEnd:
		return p.parseEnd(nameTok)
	default:
		return p.errorAt(nameTok, "unknown tag name '%s'", nameTok.Value)
	}
}

// parseFor parses "FOR variable start end [step]"
func (p *Parser) parseFor(nameTok Token) error {
	varTok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	if varTok.Type != TokenVariable {
		return p.errorAt(varTok, "FOR requires a variable name as first argument")
	}

	var args []ast.Element
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return err
		}
		if tok.Type == TokenTagClose {
			break
		}
		if !isForArgument(tok.Type) {
			return p.errorAt(tok, "invalid FOR argument of type %s", tok.Type)
		}
		if len(args) == 3 {
			return p.errorAt(tok, "too many arguments for FOR")
		}
		elem, err := p.element(tok)
		if err != nil {
			return err
		}
		args = append(args, elem)
	}

	if len(args) < 2 {
		return p.errorAt(nameTok, "FOR requires 3 or 4 arguments, got %d", len(args)+1)
	}

	var step ast.Element
	if len(args) == 3 {
		step = args[2]
	}

	loop := ast.NewForLoopNode(&ast.ElementVariable{Name: varTok.Value}, args[0], args[1], step)
	p.top().AddChild(loop)
	p.stack = append(p.stack, loop)
	return nil
}

// parseEcho parses "= element*" into a leaf node
func (p *Parser) parseEcho() error {
	var elems []ast.Element
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return err
		}
		if tok.Type == TokenTagClose {
			break
		}
		elem, err := p.element(tok)
		if err != nil {
			return err
		}
		elems = append(elems, elem)
	}

	p.top().AddChild(ast.NewEchoNode(elems...))
	return nil
}

// parseEnd closes the innermost FOR
func (p *Parser) parseEnd(nameTok Token) error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	if tok.Type != TokenTagClose {
		return p.errorAt(tok, "END takes no arguments")
	}
	if len(p.stack) <= 1 {
		return p.errorAt(nameTok, "END without matching FOR")
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

// element converts an argument token into an AST element
func (p *Parser) element(tok Token) (ast.Element, error) {
	switch tok.Type {
	case TokenVariable:
		return &ast.ElementVariable{Name: tok.Value}, nil
	case TokenString:
		return &ast.ElementString{Value: tok.Value}, nil
	case TokenFunction:
		return &ast.ElementFunction{Name: tok.Value}, nil
	case TokenOperator:
		return &ast.ElementOperator{Symbol: tok.Value}, nil
	case TokenInteger:
		v, err := strconv.ParseInt(tok.Value, 10, 32)
		if err != nil {
			return nil, p.errorAt(tok, "invalid integer literal")
		}
		return &ast.ElementConstantInteger{Value: int32(v)}, nil
	case TokenDouble:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid double literal")
		}
		return &ast.ElementConstantDouble{Value: v}, nil
	default:
		return nil, p.errorAt(tok, "unexpected %s inside tag", tok.Type)
	}
}

func (p *Parser) top() ast.Container {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) errorAt(tok Token, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
		Token:   tok,
	}
}

func isForArgument(tt TokenType) bool {
	switch tt {
	case TokenVariable, TokenInteger, TokenDouble, TokenString:
		return true
	default:
		return false
	}
}
