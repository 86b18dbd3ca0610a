package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
	"github.com/parlance-labs/recall-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	chatService   driving.ChatService
	memoryService driving.MemoryService

	// Stores
	sessions driven.SessionStore
	messages driven.MessageStore
	files    driven.FileStore
	settings driven.SettingsStore

	// Infrastructure
	db    Pinger // database health check
	index Pinger // vector index health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	chatService driving.ChatService,
	memoryService driving.MemoryService,
	sessions driven.SessionStore,
	messages driven.MessageStore,
	files driven.FileStore,
	settings driven.SettingsStore,
	db Pinger,
	index Pinger, // can be nil
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		chatService:   chatService,
		memoryService: memoryService,
		sessions:      sessions,
		messages:      messages,
		files:         files,
		settings:      settings,
		db:            db,
		index:         index,
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     s.withMiddleware(s.router),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: chat responses are long-lived SSE streams
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Chat endpoint (SSE)
	s.router.HandleFunc("POST /api/v1/chat", s.handleChat)

	// Session endpoints
	s.router.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	s.router.HandleFunc("GET /api/v1/sessions", s.handleListSessions)
	s.router.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	s.router.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleDeleteSession)

	// Conversation memory endpoints
	s.router.HandleFunc("GET /api/v1/context/summary", s.handleContextSummary)
	s.router.HandleFunc("POST /api/v1/context/restore", s.handleContextRestore)

	// Search settings endpoints
	s.router.HandleFunc("GET /api/v1/settings/search", s.handleGetSettings)
	s.router.HandleFunc("POST /api/v1/settings/search", s.handleUpdateSettings)

	// File endpoints
	s.router.HandleFunc("GET /api/v1/files", s.handleListFiles)
	s.router.HandleFunc("DELETE /api/v1/files/{id}", s.handleDeleteFile)
}

// withMiddleware wraps the router with the cross-cutting middleware stack
func (s *Server) withMiddleware(h http.Handler) http.Handler {
	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()
	cors := NewCORSMiddleware([]string{"*"})
	return recovery.Handler(logging.Handler(cors.Handler(h)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
