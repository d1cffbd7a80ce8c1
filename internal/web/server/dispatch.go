// File: dispatch.go
// Title: SmartWeb Request Dispatch
// Description: Routes a URL path to a worker, a script or a static file and
//              guards the private area and the document root.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-14
// Modified: 2026-03-21
//
// Change History:
// - 2026-03-14 v0.1.0: Initial routing
// - 2026-03-17 v0.1.1: Dispatch depth guard
// - 2026-03-21 v0.1.2: Route on cleaned paths

package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/msto63/smartweb/internal/smartscript/executor"
	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/pkg/core/logging"
)

// ScriptExtension marks files run through the script engine
const ScriptExtension = ".script"

// DefaultMimeType is sent for static files with an unknown extension
const DefaultMimeType = "application/octet-stream"

// ErrDispatchDepth is returned when internal dispatch nests deeper than the
// configured max_dispatch_depth
var ErrDispatchDepth = errors.New("maximum dispatch depth exceeded")

// StatusError is an error that maps to a specific response status
type StatusError struct {
	Code int
	Text string
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, e.Text, e.Path)
}

func notFound(path string) error {
	return &StatusError{Code: 404, Text: "Not Found", Path: path}
}

func forbidden(path string) error {
	return &StatusError{Code: 403, Text: "Forbidden", Path: path}
}

// dispatcher routes URL paths for one request. Workers reach it through
// rc.Dispatcher() to forward to another page.
type dispatcher struct {
	server *Server
	rc     *web.RequestContext
	logger *logging.Logger
	depth  int
}

// Dispatch serves urlPath as an internal request; /private is reachable
func (d *dispatcher) Dispatch(urlPath string) error {
	return d.dispatch(urlPath, false)
}

func (d *dispatcher) dispatch(urlPath string, direct bool) error {
	if limit := d.server.cfg.Server.MaxDispatchDepth; limit > 0 && d.depth >= limit {
		return fmt.Errorf("%w: %s", ErrDispatchDepth, urlPath)
	}
	d.depth++
	defer func() { d.depth-- }()

	// Routing uses the cleaned path so non-canonical spellings of /private
	// cannot bypass the private check.
	clean := path.Clean("/" + urlPath)

	if name, ok := strings.CutPrefix(clean, "/ext/"); ok {
		return d.runWorker(name, clean)
	}
	if name, ok := d.server.cfg.Workers[clean]; ok {
		return d.runWorker(name, clean)
	}
	if direct && (clean == "/private" || strings.HasPrefix(clean, "/private/")) {
		return notFound(clean)
	}
	if clean == "/" || escapesRoot(urlPath) {
		return forbidden(urlPath)
	}

	file, ok := d.server.resolve(clean)
	if !ok {
		return forbidden(clean)
	}
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return notFound(clean)
	}

	if strings.EqualFold(filepath.Ext(file), ScriptExtension) {
		return d.runScript(file)
	}
	return d.serveStatic(file, info.Size())
}

func (d *dispatcher) runWorker(name, urlPath string) error {
	if d.server.workers == nil {
		return notFound(urlPath)
	}
	worker, ok := d.server.workers.Lookup(name)
	if !ok {
		return notFound(urlPath)
	}
	d.logger.Debug("Running worker", "worker", name, "path", urlPath)
	if err := worker.ProcessRequest(d.rc); err != nil {
		return fmt.Errorf("worker %s: %w", name, err)
	}
	return nil
}

func (d *dispatcher) runScript(file string) error {
	doc, err := d.server.scripts.Get(file)
	if err != nil {
		return fmt.Errorf("%w: %w", executor.ErrExecution, err)
	}
	return executor.New(doc, d.rc, executor.Options{Logger: d.logger}).Execute()
}

func (d *dispatcher) serveStatic(file string, size int64) error {
	f, err := os.Open(file)
	if err != nil {
		return notFound(file)
	}
	defer f.Close()

	mime, ok := d.server.cfg.MimeType(filepath.Ext(file))
	if !ok {
		mime = DefaultMimeType
	}
	if err := d.rc.SetMimeType(mime); err != nil {
		return err
	}
	if err := d.rc.SetContentLength(size); err != nil {
		return err
	}
	_, err = io.Copy(d.rc, f)
	return err
}

// escapesRoot reports whether the ".." segments of urlPath climb above "/"
func escapesRoot(urlPath string) bool {
	depth := 0
	for _, seg := range strings.Split(urlPath, "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}

// resolve maps a URL path to a file below the document root. It reports
// false for paths that would leave the root.
func (s *Server) resolve(urlPath string) (string, bool) {
	file := filepath.Join(s.docRoot, filepath.FromSlash(urlPath))
	rel, err := filepath.Rel(s.docRoot, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return file, true
}
