// File: conn.go
// Title: SmartWeb Connection Handling
// Description: Serves one request per connection: reads the header, resolves
//              the session, dispatches and turns errors into responses.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-14
// Modified: 2026-03-21
//
// Change History:
// - 2026-03-14 v0.1.0: Initial connection handler
// - 2026-03-18 v0.1.1: Request ids and access log
// - 2026-03-21 v0.1.2: 400 for connections closed mid-header

package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/internal/web/accesslog"
	"github.com/msto63/smartweb/pkg/core/logging"
	"github.com/msto63/smartweb/pkg/core/version"
)

// SessionCookie is the name of the session cookie
const SessionCookie = "sid"

// serveConn handles exactly one request and closes the connection
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	requestID := uuid.New().String()
	logger := s.logger.With("request_id", requestID, "remote", conn.RemoteAddr().String())

	out := bufio.NewWriter(conn)
	defer func() {
		if err := out.Flush(); err != nil {
			logger.Debug("Client closed connection before response was sent", "error", err.Error())
		}
	}()

	raw, err := readHeader(bufio.NewReader(conn), s.cfg.Server.MaxHeaderBytes)
	if err != nil {
		if errors.Is(err, errEmptyRequest) || errors.Is(err, errHeaderTooLarge) || errors.Is(err, errIncompleteRequest) {
			logger.Debug("Rejecting request", "error", err.Error())
			writeStatus(out, 400, "Bad Request")
			return
		}
		logger.Debug("Reading request header failed", "error", err.Error())
		return
	}

	req, err := parseRequest(raw, s.cfg.Server.Domain)
	if err != nil {
		logger.Debug("Rejecting malformed request", "error", err.Error())
		writeStatus(out, 400, "Bad Request")
		return
	}

	sess, created := s.sessions.Resolve(req.Cookies[SessionCookie], req.Host)
	var cookies []*web.Cookie
	if created {
		cookies = append(cookies, &web.Cookie{
			Name:     SessionCookie,
			Value:    sess.SID,
			Domain:   req.Host,
			Path:     "/",
			HTTPOnly: true,
		})
	}

	rc := web.NewRequestContext(out, req.Params, sess.Params, cookies,
		web.WithSessionID(sess.SID),
		web.WithServerHeader(version.ServerHeader()))
	d := &dispatcher{server: s, rc: rc, logger: logger}
	rc.SetDispatcher(d)

	err = d.dispatch(req.Path, true)
	status := s.finish(rc, err, logger)

	logger.Info("Request served",
		"method", req.Method,
		"path", req.Path,
		"host", req.Host,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds())

	if s.access != nil {
		entry := &accesslog.Entry{
			ID:        requestID,
			Timestamp: start,
			Host:      req.Host,
			Method:    req.Method,
			Path:      req.Path,
			Status:    status,
			Duration:  time.Since(start),
			SessionID: sess.SID,
		}
		if err := s.access.Record(ctx, entry); err != nil {
			logger.Warn("Access log write failed", "error", err.Error())
		}
	}
}

// finish turns a dispatch result into a complete response and returns the
// status that was sent
func (s *Server) finish(rc *web.RequestContext, err error, logger *logging.Logger) int {
	if err == nil {
		if werr := rc.WriteHeader(); werr != nil {
			logger.Debug("Client closed connection", "error", werr.Error())
		}
		return rc.StatusCode()
	}

	if web.IsWriteError(err) {
		logger.Debug("Client closed connection", "error", err.Error())
		return rc.StatusCode()
	}

	code, text := 500, "Internal Server Error"
	var se *StatusError
	if errors.As(err, &se) {
		code, text = se.Code, se.Text
	} else {
		logger.Warn("Request failed", "error", err.Error())
	}

	if rc.HeaderGenerated() {
		return rc.StatusCode()
	}
	sendError(rc, code, text)
	return code
}

func writeStatus(out *bufio.Writer, code int, text string) {
	rc := web.NewRequestContext(out, nil, nil, nil, web.WithServerHeader(version.ServerHeader()))
	sendError(rc, code, text)
}

// sendError writes a plain text error page. Callers make sure the header
// has not been generated yet.
func sendError(rc *web.RequestContext, code int, text string) {
	_ = rc.SetStatus(code, text)
	_ = rc.SetMimeType("text/plain")
	_ = rc.WriteText(text + "\n")
}
