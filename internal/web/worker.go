// File: worker.go
// Title: Worker and Dispatcher Interfaces
// Description: Contracts between the server, request handlers and internal
//              dispatch.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-11
// Modified: 2026-03-11
//
// Change History:
// - 2026-03-11 v0.1.0: Initial implementation

package web

// Worker produces a complete response for one request
type Worker interface {
	ProcessRequest(rc *RequestContext) error
}

// WorkerFunc adapts a function to the Worker interface
type WorkerFunc func(rc *RequestContext) error

// ProcessRequest calls f(rc)
func (f WorkerFunc) ProcessRequest(rc *RequestContext) error {
	return f(rc)
}

// Dispatcher serves another URL path within the current request. Internal
// dispatch may reach paths under /private that direct requests cannot.
type Dispatcher interface {
	Dispatch(urlPath string) error
}

// DispatcherFunc adapts a function to the Dispatcher interface
type DispatcherFunc func(urlPath string) error

// Dispatch calls f(urlPath)
func (f DispatcherFunc) Dispatch(urlPath string) error {
	return f(urlPath)
}
