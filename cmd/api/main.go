package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/api/handlers"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/api/middleware"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/archive"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/config"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/llm"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/logger"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/query"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/store"
)

func main() {
	// Parse command-line flags
	var (
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		configPath = flag.String("config", os.Getenv("FINANCE_CONFIG"), "path to YAML config file (or set FINANCE_CONFIG env)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New("info")
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)

	if cfg.APIKey == "" {
		log.Warn().Msg("No GEMINI_API_KEY configured - questions will fail until one is set")
	}

	ctx := context.Background()

	// Initialize storage
	datasetStore, err := store.New(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize dataset store")
	}
	archiver, err := archive.NewLocalArchiver(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload archive")
	}

	// Initialize completion backend and orchestrator
	completer, err := llm.New(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create completion client")
	}
	orchestrator := query.New(completer, log, query.Options{
		MaxExcerptRows: cfg.MaxExcerptRows,
		Retries:        cfg.QueryRetries,
		Timeout:        time.Duration(cfg.QueryTimeout),
	})

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(datasetStore, archiver, cfg.MaxUploadBytes, cfg.MaxRejectRatio, log)
	queryHandler := handlers.NewQueryHandler(datasetStore, orchestrator, log)
	summaryHandler := handlers.NewSummaryHandler(datasetStore, log)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(completer.Model(), cfg.APIKey != "")

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			uploadHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
		}
	})

	mux.HandleFunc("/api/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodPost {
			queryHandler.Query(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
		}
	})

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			summaryHandler.Summary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
		}
	})

	mux.HandleFunc("/api/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			diagnosticsHandler.Diagnostics(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
		}
	})

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/", handlers.Dashboard)

	// Apply middleware
	handler := middleware.Chain(log, mux)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("model", completer.Model()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
