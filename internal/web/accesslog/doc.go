// File: doc.go
// Title: Access Log Package Documentation
// Description: Package overview for the SQLite access log.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-18
// Modified: 2026-03-18
//
// Change History:
// - 2026-03-18 v0.1.0: Initial implementation

// Package accesslog records one row per served request in a SQLite
// database. The server writes to it when access_log is set in the
// configuration; the AccessLog worker reads from it.
package accesslog
