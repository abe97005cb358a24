// Package httpapi wires the HTTP surface of §6: chi routing, JSON
// request/response DTOs, and the uniform error-to-status translation of
// §7.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ragvault/ragvault/internal/entities"
	"github.com/ragvault/ragvault/internal/ingest"
	"github.com/ragvault/ragvault/internal/retrieval"
)

// Version is the build-time version string reported by /health. It is
// overridable via -ldflags, matching the teacher's -version flag.
var Version = "dev"

// Server wires HTTP handlers to the underlying entity, ingest, and
// retrieval services.
type Server struct {
	router    http.Handler
	vaults    *entities.Vaults
	documents *entities.Documents
	agents    *entities.Agents
	ingest    *ingest.Pipeline
	retrieval *retrieval.Core
	logger    *zap.Logger

	requestTimeout time.Duration
	maxBodyBytes   int64
}

// Deps bundles the dependencies New needs; it keeps the constructor
// signature stable as the service grows.
type Deps struct {
	Vaults         *entities.Vaults
	Documents      *entities.Documents
	Agents         *entities.Agents
	Ingest         *ingest.Pipeline
	Retrieval      *retrieval.Core
	Logger         *zap.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// New constructs a Server with the provided dependencies and mounts every
// route of §6.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		vaults:         d.Vaults,
		documents:      d.Documents,
		agents:         d.Agents,
		ingest:         d.Ingest,
		retrieval:      d.Retrieval,
		logger:         logger,
		requestTimeout: d.RequestTimeout,
		maxBodyBytes:   d.MaxBodyBytes,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Timeout(d.RequestTimeout))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", s.handleHealth)

	mux.Post("/vaults", s.handleCreateVault)
	mux.Get("/vaults", s.handleListVaults)
	mux.Get("/vaults/{id}", s.handleGetVault)
	mux.Delete("/vaults/{id}", s.handleDeleteVault)

	mux.Post("/ingest", s.handleIngest)

	mux.Post("/chat", s.handleChat)

	mux.Get("/documents", s.handleListDocuments)
	mux.Get("/documents/{id}", s.handleGetDocument)
	mux.Delete("/documents/{id}", s.handleDeleteDocument)

	mux.Post("/agents", s.handleCreateAgent)
	mux.Get("/agents", s.handleListAgents)
	mux.Get("/agents/{id}", s.handleGetAgent)
	mux.Delete("/agents/{id}", s.handleDeleteAgent)

	s.router = mux
	return s
}

// ServeHTTP exposes the router so Server satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": Version})
}
