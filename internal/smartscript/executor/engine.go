// File: engine.go
// Title: SmartScript Execution Engine
// Description: Walks a SmartScript document tree as an ast.Visitor, keeps
//              loop variables on a multistack and evaluates echo tags on an
//              operand stack.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-08
// Modified: 2026-03-11
//
// Change History:
// - 2026-03-08 v0.1.0: Initial executor implementation
// - 2026-03-11 v0.1.1: Separate client write failures from script errors

package executor

import (
	"errors"
	"fmt"

	"github.com/msto63/smartweb/internal/smartscript/ast"
	"github.com/msto63/smartweb/internal/smartscript/multistack"
	"github.com/msto63/smartweb/internal/smartscript/value"
	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/pkg/core/logging"
)

// ErrExecution is returned for every failure caused by the script itself
var ErrExecution = errors.New("script execution failed")

// Engine executes one document for one request. It is not reusable across
// requests and not safe for concurrent use.
type Engine struct {
	doc    *ast.DocumentNode
	rc     *web.RequestContext
	vars   *multistack.Multistack
	logger *logging.Logger
}

// Options configures the engine
type Options struct {
	Logger *logging.Logger
}

// New creates an engine for doc writing to rc
func New(doc *ast.DocumentNode, rc *web.RequestContext, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Engine{
		doc:    doc,
		rc:     rc,
		vars:   multistack.New(),
		logger: opts.Logger.With("component", "smartscript-executor"),
	}
}

// Execute runs the document. A failing client connection is returned as is
// (see web.IsWriteError); every other failure wraps ErrExecution.
func (e *Engine) Execute() error {
	if e.doc == nil {
		return fmt.Errorf("%w: no document", ErrExecution)
	}

	err := e.doc.Accept(&interpreter{engine: e})
	switch {
	case err == nil:
		return nil
	case web.IsWriteError(err):
		e.logger.Debug("Client write failed during script execution", "error", err.Error())
		return err
	default:
		e.logger.Warn("Script execution failed", "error", err.Error())
		return fmt.Errorf("%w: %w", ErrExecution, err)
	}
}

// Variables exposes the loop variable stacks; after Execute every stack is empty
func (e *Engine) Variables() *multistack.Multistack {
	return e.vars
}

// interpreter implements ast.Visitor without exporting the visit methods
type interpreter struct {
	engine   *Engine
	operands []*value.Wrapper
}

func (in *interpreter) VisitDocument(n *ast.DocumentNode) error {
	return ast.WalkChildren(in, n)
}

func (in *interpreter) VisitText(n *ast.TextNode) error {
	return in.engine.rc.WriteText(n.Text)
}

func (in *interpreter) VisitForLoop(n *ast.ForLoopNode) error {
	name := n.Variable.Name

	start, err := in.resolve(n.Start)
	if err != nil {
		return fmt.Errorf("FOR %s start: %w", name, err)
	}
	end, err := in.resolve(n.End)
	if err != nil {
		return fmt.Errorf("FOR %s end: %w", name, err)
	}
	step := value.New(int32(1))
	if n.Step != nil {
		if step, err = in.resolve(n.Step); err != nil {
			return fmt.Errorf("FOR %s step: %w", name, err)
		}
	}

	vars := in.engine.vars
	vars.Push(name, start)
	defer func() { _, _ = vars.Pop(name) }()

	for {
		current, err := vars.Peek(name)
		if err != nil {
			return err
		}
		cmp, err := current.NumCompare(end)
		if err != nil {
			return fmt.Errorf("FOR %s: %w", name, err)
		}
		if cmp > 0 {
			return nil
		}

		if err := ast.WalkChildren(in, n); err != nil {
			return err
		}

		current, err = vars.Peek(name)
		if err != nil {
			return err
		}
		if err := current.Add(step); err != nil {
			return fmt.Errorf("FOR %s step: %w", name, err)
		}
	}
}

func (in *interpreter) VisitEcho(n *ast.EchoNode) error {
	in.operands = in.operands[:0]

	for _, elem := range n.Elements() {
		if err := in.evaluate(elem); err != nil {
			return err
		}
	}

	for _, v := range in.operands {
		if err := in.engine.rc.WriteText(v.String()); err != nil {
			return err
		}
	}
	return nil
}

func (in *interpreter) evaluate(elem ast.Element) error {
	switch el := elem.(type) {
	case *ast.ElementOperator:
		b, err := in.pop()
		if err != nil {
			return fmt.Errorf("operator %s: %w", el.Symbol, err)
		}
		a, err := in.pop()
		if err != nil {
			return fmt.Errorf("operator %s: %w", el.Symbol, err)
		}
		result := a.Copy()
		if err := applyOperator(result, el.Symbol, b); err != nil {
			return fmt.Errorf("operator %s: %w", el.Symbol, err)
		}
		in.push(result)
		return nil

	case *ast.ElementFunction:
		fn, ok := builtins[el.Name]
		if !ok {
			return fmt.Errorf("unknown function @%s", el.Name)
		}
		if err := fn(in); err != nil {
			return fmt.Errorf("@%s: %w", el.Name, err)
		}
		return nil

	default:
		v, err := in.resolve(elem)
		if err != nil {
			return err
		}
		in.push(v)
		return nil
	}
}

// resolve turns a constant, string or variable element into a fresh value
func (in *interpreter) resolve(elem ast.Element) (*value.Wrapper, error) {
	switch el := elem.(type) {
	case *ast.ElementConstantInteger:
		return value.New(el.Value), nil
	case *ast.ElementConstantDouble:
		return value.New(el.Value), nil
	case *ast.ElementString:
		return value.New(el.Value), nil
	case *ast.ElementVariable:
		v, err := in.engine.vars.Peek(el.Name)
		if err != nil {
			return nil, fmt.Errorf("unknown variable %q", el.Name)
		}
		return v.Copy(), nil
	default:
		return nil, fmt.Errorf("cannot use %s as a value", elem.AsText())
	}
}

func applyOperator(w *value.Wrapper, symbol string, other *value.Wrapper) error {
	switch symbol {
	case "+":
		return w.Add(other)
	case "-":
		return w.Subtract(other)
	case "*":
		return w.Multiply(other)
	case "/":
		return w.Divide(other)
	case "^":
		return w.Power(other)
	default:
		return fmt.Errorf("unknown operator %q", symbol)
	}
}

func (in *interpreter) push(v *value.Wrapper) {
	in.operands = append(in.operands, v)
}

func (in *interpreter) pop() (*value.Wrapper, error) {
	if len(in.operands) == 0 {
		return nil, errors.New("operand stack is empty")
	}
	top := in.operands[len(in.operands)-1]
	in.operands = in.operands[:len(in.operands)-1]
	return top, nil
}

func (in *interpreter) peek() (*value.Wrapper, error) {
	if len(in.operands) == 0 {
		return nil, errors.New("operand stack is empty")
	}
	return in.operands[len(in.operands)-1], nil
}
