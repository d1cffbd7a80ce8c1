// File: doc.go
// Title: SmartScript AST Package Documentation
// Description: Package documentation for the SmartScript abstract syntax tree.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-04
//
// Change History:
// - 2026-03-04 v0.1.0: Initial package documentation

// Package ast defines the abstract syntax tree of SmartScript documents.
//
// A document is a tree of nodes. DocumentNode is the root, ForLoopNode is the
// only other container, and TextNode and EchoNode are leaves. Tag arguments are
// represented as Elements (constants, strings, variables, functions and
// operators).
//
// Every node can be turned back into SmartScript source with String. Parsing
// that source again yields a structurally equal tree:
//
//	doc, _ := parser.Parse(src)
//	again, _ := parser.Parse(doc.String())
//	ast.Equal(doc, again) // true
package ast
