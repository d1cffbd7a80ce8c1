// File: server.go
// Title: SmartWeb HTTP Server
// Description: Listens on a TCP socket and hands accepted connections to a
//              fixed pool of goroutines. Owns the session table, the script
//              cache and the optional access log.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-14
// Modified: 2026-03-18
//
// Change History:
// - 2026-03-14 v0.1.0: Initial server implementation
// - 2026-03-16 v0.1.1: errgroup based lifecycle, session sweeper
// - 2026-03-18 v0.1.2: Access log and request ids

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/msto63/smartweb/internal/smartscript/ast"
	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/internal/web/accesslog"
	"github.com/msto63/smartweb/internal/web/scriptcache"
	"github.com/msto63/smartweb/internal/web/session"
	"github.com/msto63/smartweb/pkg/core/config"
	"github.com/msto63/smartweb/pkg/core/logging"
	"github.com/msto63/smartweb/pkg/core/version"
)

// WorkerSource resolves worker names to workers
type WorkerSource interface {
	Lookup(name string) (web.Worker, bool)
}

// ScriptSource returns the parsed document for a script file
type ScriptSource interface {
	Get(path string) (*ast.DocumentNode, error)
}

// AccessRecorder stores one entry per served request
type AccessRecorder interface {
	Record(ctx context.Context, entry *accesslog.Entry) error
}

// Options configures the server beyond the configuration file
type Options struct {
	Logger    *logging.Logger
	Workers   WorkerSource
	Scripts   ScriptSource
	AccessLog AccessRecorder
	Sessions  *session.Table
}

// Server is a minimal HTTP/1.x server for static files, SmartScript pages
// and workers. Every connection serves exactly one request.
type Server struct {
	cfg      *config.Config
	docRoot  string
	logger   *logging.Logger
	workers  WorkerSource
	scripts  ScriptSource
	access   AccessRecorder
	sessions *session.Table

	ownScripts *scriptcache.Cache

	mu       sync.Mutex
	listener net.Listener
	conns    chan net.Conn
	group    *errgroup.Group
	cancel   context.CancelFunc
}

// ErrServerStarted is returned by Start on a running server
var ErrServerStarted = errors.New("server already started")

// New validates cfg and creates a server. Every path listed in the
// configuration's [workers] table must name a worker known to opts.Workers.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	root, err := filepath.Abs(cfg.Server.DocumentRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve document root: %w", err)
	}

	for path, name := range cfg.Workers {
		if opts.Workers == nil {
			return nil, fmt.Errorf("worker %q configured for %s but no worker registry given", name, path)
		}
		if _, ok := opts.Workers.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown worker %q configured for %s", name, path)
		}
	}

	s := &Server{
		cfg:      cfg,
		docRoot:  root,
		logger:   opts.Logger.With("component", "http-server"),
		workers:  opts.Workers,
		scripts:  opts.Scripts,
		access:   opts.AccessLog,
		sessions: opts.Sessions,
	}

	if s.sessions == nil {
		s.sessions = session.NewTable(session.Options{
			Timeout: cfg.SessionTimeout(),
			Logger:  opts.Logger,
		})
	}
	if s.scripts == nil {
		cache, err := scriptcache.New(scriptcache.Options{Logger: opts.Logger})
		if err != nil {
			return nil, fmt.Errorf("create script cache: %w", err)
		}
		s.scripts = cache
		s.ownScripts = cache
	}
	return s, nil
}

// Start binds the listener and starts the accept loop, the connection pool
// and the session sweeper. It returns once the socket is listening.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrServerStarted
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddress(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)

	s.listener = ln
	s.cancel = cancel
	s.group = group
	s.conns = make(chan net.Conn)

	group.Go(func() error { return s.acceptLoop(ctx, ln) })
	for i := 0; i < s.cfg.Server.Workers; i++ {
		group.Go(func() error { return s.connWorker(ctx) })
	}
	group.Go(func() error {
		return s.sessions.RunSweeper(ctx, s.cfg.Server.SweepInterval.Duration)
	})
	group.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	s.logger.Info("Server started",
		"address", ln.Addr().String(),
		"document_root", s.docRoot,
		"workers", s.cfg.Server.Workers,
		"version", version.ServerHeader())
	return nil
}

// Wait blocks until the server has stopped
func (s *Server) Wait() error {
	s.mu.Lock()
	group := s.group
	s.mu.Unlock()

	if group == nil {
		return nil
	}
	err := group.Wait()
	if errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop closes the listener and waits for in-flight requests until ctx is
// done. There is no way to abort a request that is being processed.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("stop server: %w", ctx.Err())
	}

	if s.ownScripts != nil {
		if cerr := s.ownScripts.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	s.logger.Info("Server stopped")
	return err
}

// Address returns the bound listener address, or nil before Start
func (s *Server) Address() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Sessions returns the session table
func (s *Server) Sessions() *session.Table {
	return s.sessions
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("Accept timeout", "error", err.Error())
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		select {
		case s.conns <- conn:
		case <-ctx.Done():
			conn.Close()
			return nil
		}
	}
}

func (s *Server) connWorker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case conn := <-s.conns:
			s.serveConn(ctx, conn)
		}
	}
}
