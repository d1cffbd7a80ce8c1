// File: doc.go
// Title: SmartScript Executor Package Documentation
// Description: Interprets parsed SmartScript documents against a request
//              context.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-08
// Modified: 2026-03-08
//
// Change History:
// - 2026-03-08 v0.1.0: Initial executor implementation

/*
Package executor runs a SmartScript document tree and writes its output to a
web.RequestContext.

Text nodes are copied to the output. FOR loops bind their variable on a
multistack, so a nested loop reusing the name shadows the outer value and
restores it when it ends. Echo tags are evaluated in postfix order on an
operand stack:

	{$= "a" "1" @paramGet 2 * $}

pushes the request parameter a (or "1"), pushes 2 and multiplies. Whatever is
left on the stack is printed bottom first.

Script failures are reported as ErrExecution. Failures of the client
connection are returned as *web.WriteError instead, so the server can tell a
dead client from a broken script.
*/
package executor
