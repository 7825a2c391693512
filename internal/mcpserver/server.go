// Package mcpserver exposes the template service as MCP tools over
// streamable HTTP, so agents can list templates and generate decks.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/fields"
	"github.com/mark3labs/deckfill/internal/hooks"
	"github.com/mark3labs/deckfill/internal/kv"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
	"github.com/mark3labs/deckfill/internal/workflow"
	"github.com/mark3labs/mcp-go/server"
)

// Name and Version identify the server to MCP clients.
const (
	Name    = "deckfill-tools"
	Version = "1.0.0"
)

// Service is the remote surface the tools use.
type Service interface {
	workflow.Service
	fields.AssetService
	ListTemplates(ctx context.Context) ([]template.Template, error)
	GetTemplate(ctx context.Context, id template.ID) (template.Template, error)
}

var _ Service = (*api.Client)(nil)

type Options struct {
	// Addr is the listen address. Empty picks a random loopback port.
	Addr string
	// Sessions holds per-call form state. Defaults to an in-memory store.
	Sessions kv.Store
	// OutputDir receives generated presentations.
	OutputDir string
	// Hooks run in WorkDir after each saved presentation.
	Hooks   *hooks.Config
	WorkDir string
}

// Server serves the tools at /mcp and a liveness probe at /health.
type Server struct {
	svc  Service
	opts Options
	mcp  *server.MCPServer

	mu   sync.Mutex
	http *http.Server
	port int
}

// New registers the tools. Nothing listens until Start.
func New(svc Service, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	if opts.Sessions == nil {
		opts.Sessions = kv.NewMemoryStore()
	}
	s := &Server{
		svc:  svc,
		opts: opts,
		mcp:  server.NewMCPServer(Name, Version, server.WithToolCapabilities(true)),
	}
	s.registerTools()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Handle("/mcp", server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true)))
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "OK")
	}).Methods(http.MethodGet)
	return handlers.LoggingHandler(logger.Writer(logger.LevelDebug), r)
}

// Start binds Addr and serves in the background. It returns the bound port.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return 0, errors.New("mcp server already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return 0, fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	s.port = ln.Addr().(*net.TCPAddr).Port
	srv := &http.Server{Handler: s.routes(), ReadHeaderTimeout: 10 * time.Second}
	s.http = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("MCP server: %v", err)
		}
	}()
	logger.Info("MCP server listening on port %d", s.port)
	return s.port, nil
}

// Stop shuts the listener down. Stopping a stopped server does nothing.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.http = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping mcp server: %w", err)
	}
	return nil
}

// URL is the MCP endpoint of a started server.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
