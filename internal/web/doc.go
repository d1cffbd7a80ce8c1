// File: doc.go
// Title: Web Package Documentation
// Description: Request scoped types shared by the server, workers and the
//              script engine.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-11
// Modified: 2026-03-11
//
// Change History:
// - 2026-03-11 v0.1.0: Initial implementation

// Package web holds the request-scoped types shared by the server, the
// workers and the script engine: RequestContext, Cookie, ParamStore and
// the Worker and Dispatcher interfaces.
//
// A RequestContext buffers response header fields until the first body
// write. That write emits the status line and headers, and from then on
// every header setter fails with ErrHeaderGenerated.
package web
