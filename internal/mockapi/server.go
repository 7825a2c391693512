// Package mockapi is an in-memory stand-in for the template service,
// used for development and tests. Placeholder extraction is a plain
// {{kind:name}} text scan.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mark3labs/deckfill/internal/api"
	"github.com/mark3labs/deckfill/internal/logger"
	"github.com/mark3labs/deckfill/internal/template"
)

// TrashRetention is how long a trashed template can be restored.
const TrashRetention = api.TrashRetention

// maxUpload caps multipart bodies.
const maxUpload = 32 << 20

type record struct {
	tpl     template.Template
	file    []byte
	purged  bool
	created time.Time
}

type asset struct {
	data   []byte
	source string
}

// Server is the mock backend.
type Server struct {
	mu        sync.Mutex
	templates map[template.ID]*record
	assets    map[string]asset
	nextID    int
	now       func() time.Time
	baseURL   string

	router  *mux.Router
	httpSrv *http.Server
	addr    string
}

// New creates an empty mock backend.
func New() *Server {
	s := &Server{
		templates: make(map[template.ID]*record),
		assets:    make(map[string]asset),
		nextID:    1,
		now:       time.Now,
	}
	s.router = s.routes()
	return s
}

// SetClock overrides the time source.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetBaseURL sets the public address used in asset view URLs.
func (s *Server) SetBaseURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = u
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/templates", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/templates/trash", s.handleTrash).Methods(http.MethodGet)
	api.HandleFunc("/templates/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/templates/{id}", s.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/templates/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/templates/{id}/restore", s.handleRestore).Methods(http.MethodPost)
	api.HandleFunc("/upload", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/save_template", s.handleSave).Methods(http.MethodPost)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/assets/upload", s.handleAssetUpload).Methods(http.MethodPost)
	api.HandleFunc("/assets/upload_from_url", s.handleAssetFromURL).Methods(http.MethodPost)
	api.HandleFunc("/assets/view-url", s.handleViewURL).Methods(http.MethodGet)
	api.HandleFunc("/images/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/scrape/images", s.handleScrape).Methods(http.MethodPost)

	r.HandleFunc("/assets/{key:.+}", s.handleAssetBytes).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "OK")
	}).Methods(http.MethodGet)
	return r
}

// Handler returns the routes wrapped with panic recovery and an access
// log at debug level.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.LoggingHandler(logger.Writer(logger.LevelDebug), h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(h)
	return h
}

// Start listens on addr (":0" for a random port) in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	if s.baseURL == "" {
		s.baseURL = "http://" + s.addr
	}
	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	srv := s.httpSrv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mock api server error: %v", err)
		}
	}()
	logger.Info("Mock API listening on %s", s.addr)
	return nil
}

// URL returns the base URL once started.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// Stop shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// AddTemplate stores a template directly, scanning content for markers.
func (s *Server) AddTemplate(name, description string, content []byte) template.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(name, description, content, template.Scan(string(content)))
}

// Purge makes a trashed template unrecoverable.
func (s *Server) Purge(id template.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.templates[id]; ok {
		rec.purged = true
	}
}

// Asset returns stored asset bytes, for tests.
func (s *Server) Asset(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[key]
	return a.data, ok
}

// insert must be called with mu held.
func (s *Server) insert(name, description string, content []byte, placeholders []template.Placeholder) template.Template {
	id := template.ID(strconv.Itoa(s.nextID))
	s.nextID++
	now := s.now().UTC()
	if placeholders == nil {
		placeholders = []template.Placeholder{}
	}
	rec := &record{
		tpl: template.Template{
			ID:           id,
			Name:         name,
			Description:  description,
			Placeholders: placeholders,
			CreatedAt:    &now,
		},
		file:    content,
		created: now,
	}
	s.templates[id] = rec
	return rec.tpl
}

// gone reports whether a trashed record is past restoring. mu must be held.
func (s *Server) gone(rec *record) bool {
	if rec.purged {
		return true
	}
	return rec.tpl.DeletedAt != nil && s.now().Sub(*rec.tpl.DeletedAt) > TrashRetention
}

// nameTaken must be called with mu held.
func (s *Server) nameTaken(name string, except template.ID) bool {
	for id, rec := range s.templates {
		if id != except && !rec.purged && rec.tpl.DeletedAt == nil && rec.tpl.Name == name {
			return true
		}
	}
	return false
}

// sorted returns records matching keep, newest first. mu must be held.
func (s *Server) sorted(keep func(*record) bool) []template.Template {
	var out []template.Template
	for _, rec := range s.templates {
		if keep(rec) {
			out = append(out, rec.tpl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(*out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(*out[j].CreatedAt)
	})
	if out == nil {
		out = []template.Template{}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("mock api: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
