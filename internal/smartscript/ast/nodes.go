// File: nodes.go
// Title: SmartScript AST Node Definitions
// Description: Defines the document, text, for-loop and echo nodes of a parsed
//              SmartScript document together with their source serialization.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-04
//
// Change History:
// - 2026-03-04 v0.1.0: Initial AST node definitions

package ast

import (
	"strings"
)

// Node represents the base interface for all AST nodes. The set of
// implementations is closed: DocumentNode, TextNode, ForLoopNode, EchoNode.
type Node interface {
	// String returns the node as SmartScript source
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) error

	node()
}

// Container is a node that owns an ordered list of children
type Container interface {
	Node
	AddChild(child Node)
	Children() []Node
	ChildCount() int
}

// children is the child list shared by the container nodes
type children struct {
	nodes []Node
}

// AddChild appends a child node
func (c *children) AddChild(child Node) {
	c.nodes = append(c.nodes, child)
}

// Children returns the child nodes in document order
func (c *children) Children() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// ChildCount returns the number of children
func (c *children) ChildCount() int {
	return len(c.nodes)
}

// Child returns the child at index i
func (c *children) Child(i int) Node {
	return c.nodes[i]
}

func (c *children) writeChildren(sb *strings.Builder) {
	for _, n := range c.nodes {
		sb.WriteString(n.String())
	}
}

// DocumentNode is the root of every parsed document
type DocumentNode struct {
	children
}

// TextNode holds literal document text (unescaped)
type TextNode struct {
	Text string
}

// ForLoopNode iterates Variable from Start to End (inclusive) by Step.
// Step is nil when the tag has no step argument.
type ForLoopNode struct {
	children
	Variable *ElementVariable
	Start    Element
	End      Element
	Step     Element
}

// EchoNode writes the result of evaluating its elements
type EchoNode struct {
	elements []Element
}

// NewDocumentNode creates an empty document
func NewDocumentNode() *DocumentNode {
	return &DocumentNode{}
}

// NewTextNode creates a text node
func NewTextNode(text string) *TextNode {
	return &TextNode{Text: text}
}

// NewForLoopNode creates a for-loop container; step may be nil
func NewForLoopNode(variable *ElementVariable, start, end, step Element) *ForLoopNode {
	return &ForLoopNode{
		Variable: variable,
		Start:    start,
		End:      end,
		Step:     step,
	}
}

// NewEchoNode creates an echo node; the element list is fixed afterwards
func NewEchoNode(elements ...Element) *EchoNode {
	elems := make([]Element, len(elements))
	copy(elems, elements)
	return &EchoNode{elements: elems}
}

// Elements returns the echo elements in source order
func (n *EchoNode) Elements() []Element {
	out := make([]Element, len(n.elements))
	copy(out, n.elements)
	return out
}

func (n *DocumentNode) String() string {
	var sb strings.Builder
	n.writeChildren(&sb)
	return sb.String()
}

func (n *TextNode) String() string {
	return EscapeText(n.Text)
}

func (n *ForLoopNode) String() string {
	var sb strings.Builder
	sb.WriteString("{$ FOR ")
	sb.WriteString(n.Variable.AsText())
	sb.WriteByte(' ')
	sb.WriteString(n.Start.AsText())
	sb.WriteByte(' ')
	sb.WriteString(n.End.AsText())
	if n.Step != nil {
		sb.WriteByte(' ')
		sb.WriteString(n.Step.AsText())
	}
	sb.WriteString(" $}")
	n.writeChildren(&sb)
	sb.WriteString("{$END$}")
	return sb.String()
}

func (n *EchoNode) String() string {
	var sb strings.Builder
	sb.WriteString("{$=")
	for _, e := range n.elements {
		sb.WriteByte(' ')
		sb.WriteString(e.AsText())
	}
	sb.WriteString(" $}")
	return sb.String()
}

func (*DocumentNode) node() {}
func (*TextNode) node()     {}
func (*ForLoopNode) node()  {}
func (*EchoNode) node()     {}

// Equal reports whether two trees have the same shape and values
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *DocumentNode:
		y, ok := b.(*DocumentNode)
		return ok && childrenEqual(&x.children, &y.children)
	case *TextNode:
		y, ok := b.(*TextNode)
		return ok && x.Text == y.Text
	case *ForLoopNode:
		y, ok := b.(*ForLoopNode)
		if !ok {
			return false
		}
		var xv, yv Element
		if x.Variable != nil {
			xv = x.Variable
		}
		if y.Variable != nil {
			yv = y.Variable
		}
		return elementsEqual(xv, yv) &&
			elementsEqual(x.Start, y.Start) &&
			elementsEqual(x.End, y.End) &&
			elementsEqual(x.Step, y.Step) &&
			childrenEqual(&x.children, &y.children)
	case *EchoNode:
		y, ok := b.(*EchoNode)
		if !ok || len(x.elements) != len(y.elements) {
			return false
		}
		for i := range x.elements {
			if !elementsEqual(x.elements[i], y.elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func childrenEqual(a, b *children) bool {
	if len(a.nodes) != len(b.nodes) {
		return false
	}
	for i := range a.nodes {
		if !Equal(a.nodes[i], b.nodes[i]) {
			return false
		}
	}
	return true
}
