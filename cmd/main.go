package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chromamcp/internal/config"
	"chromamcp/internal/handler"
	"chromamcp/internal/service"
	"chromamcp/internal/storage"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	Config     *config.Config
	Logger     logr.Logger
	Collection storage.Collection
	Embedder   storage.Embedder
	Services   *Services
	Handlers   *Handlers
}

type Services struct {
	Documents *service.DocumentService
	MCPServer *service.MCPServerService
}

type Handlers struct {
	Health *handler.HealthHandler
	MCP    *handler.MCPHandler
}

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logHandler := newLogHandler(cfg.LogLevel)
	logger := logr.FromSlogHandler(logHandler)
	if envErr != nil {
		logger.V(1).Info("No .env file loaded", "reason", envErr.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize server
	srv, err := initializeServer(ctx, cfg, logger)
	if err != nil {
		logger.Error(err, "Failed to initialize server")
		os.Exit(1)
	}
	defer srv.Close()

	mcpServer := srv.Handlers.MCP.NewServer()

	switch cfg.Transport {
	case config.TransportHTTP:
		err = serveHTTP(ctx, srv, mcpServer)
	default:
		err = serveStdio(ctx, mcpServer, logHandler)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err, "Server stopped with error")
		srv.Close()
		os.Exit(1)
	}

	logger.Info("Server stopped")
}

func newLogHandler(level string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	// stdout carries the protocol
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
}

func initializeServer(ctx context.Context, cfg *config.Config, logger logr.Logger) (*Server, error) {
	// Initialize embedding function
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Initialize storage layer
	collection, err := newCollection(ctx, cfg, embedder, logger.WithName("storage"))
	if err != nil {
		closeEmbedder(embedder)
		return nil, err
	}

	// Initialize services
	documents := service.NewDocumentService(collection, cfg.MaxResults, logger.WithName("documents"))
	services := &Services{
		Documents: documents,
		MCPServer: service.NewMCPServerService(documents),
	}

	// Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(services.MCPServer),
		MCP:    handler.NewMCPHandler(services.MCPServer, logger.WithName("mcp")),
	}

	logger.Info("Server initialized",
		"store", cfg.StoreBackend,
		"embedder", cfg.Embedder,
		"collection", cfg.CollectionName,
		"transport", cfg.Transport,
	)

	return &Server{
		Config:     cfg,
		Logger:     logger,
		Collection: collection,
		Embedder:   embedder,
		Services:   services,
		Handlers:   handlers,
	}, nil
}

func newEmbedder(ctx context.Context, cfg *config.Config) (storage.Embedder, error) {
	switch cfg.Embedder {
	case config.EmbedderOpenAI:
		return storage.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
	case config.EmbedderGoogle:
		return storage.NewGoogleEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
	case config.EmbedderDefault:
		return storage.NewDefaultEmbedder()
	case config.EmbedderHash:
		return storage.NewHashEmbedder(cfg.EmbeddingDimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder)
	}
}

func newCollection(ctx context.Context, cfg *config.Config, embedder storage.Embedder, logger logr.Logger) (storage.Collection, error) {
	switch cfg.StoreBackend {
	case config.StoreChroma:
		return storage.NewChromaStore(ctx, cfg.ChromaURL, cfg.CollectionName, embedder, logger)
	case config.StorePinecone:
		return storage.NewPineconeStore(cfg.PineconeAPIKey, cfg.PineconeHost, cfg.CollectionName, embedder, logger)
	case config.StorePostgres:
		return storage.NewPostgresStore(ctx, cfg.PostgresDSN, cfg.CollectionName, embedder, logger)
	case config.StoreSQLite:
		return storage.NewSQLiteStore(ctx, cfg.SQLitePath, cfg.CollectionName, embedder, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

func closeEmbedder(embedder storage.Embedder) {
	if c, ok := embedder.(io.Closer); ok {
		c.Close()
	}
}

// Close releases the collection and the embedder. Safe to call twice.
func (s *Server) Close() {
	if s.Collection != nil {
		if err := s.Collection.Close(); err != nil {
			s.Logger.Error(err, "Failed to close collection")
		}
		s.Collection = nil
	}
	if s.Embedder != nil {
		closeEmbedder(s.Embedder)
		s.Embedder = nil
	}
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer, logHandler slog.Handler) error {
	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(logHandler, slog.LevelError))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func setupRoutes(h *Handlers, mcpServer *server.MCPServer) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", h.Health.HandleHealthCheck).Methods(http.MethodGet)

	// MCP endpoint
	router.Handle("/mcp", server.NewStreamableHTTPServer(mcpServer))

	return router
}

func serveHTTP(ctx context.Context, srv *Server, mcpServer *server.MCPServer) error {
	httpServer := &http.Server{
		Addr:              ":" + srv.Config.Port,
		Handler:           setupRoutes(srv.Handlers, mcpServer),
		ReadHeaderTimeout: 60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	srv.Logger.Info("MCP server listening", "port", srv.Config.Port)
	return runHTTPServer(ctx, httpServer, srv.Logger)
}

// runHTTPServer serves until ctx is cancelled or the listener fails.
func runHTTPServer(ctx context.Context, httpServer *http.Server, logger logr.Logger) error {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "Failed to shut down http server")
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
