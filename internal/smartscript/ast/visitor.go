// File: visitor.go
// Title: SmartScript AST Visitor
// Description: Visitor interface for walking SmartScript documents.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-04
//
// Change History:
// - 2026-03-04 v0.1.0: Initial visitor implementation

package ast

// Visitor is implemented by everything that walks a document tree
type Visitor interface {
	VisitDocument(node *DocumentNode) error
	VisitText(node *TextNode) error
	VisitForLoop(node *ForLoopNode) error
	VisitEcho(node *EchoNode) error
}

func (n *DocumentNode) Accept(v Visitor) error { return v.VisitDocument(n) }
func (n *TextNode) Accept(v Visitor) error     { return v.VisitText(n) }
func (n *ForLoopNode) Accept(v Visitor) error  { return v.VisitForLoop(n) }
func (n *EchoNode) Accept(v Visitor) error     { return v.VisitEcho(n) }

// WalkChildren visits the children of a container in order and stops at the
// first error
func WalkChildren(v Visitor, c Container) error {
	for _, child := range c.Children() {
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	return nil
}
