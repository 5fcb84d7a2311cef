package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clinika/notectx/internal/config"
	"github.com/clinika/notectx/internal/domain"
	logpkg "github.com/clinika/notectx/internal/logger"
	"github.com/clinika/notectx/internal/metrics"
	ingestrepo "github.com/clinika/notectx/internal/repository/ingest"
	chiTransport "github.com/clinika/notectx/internal/transport/chi"
	"github.com/clinika/notectx/internal/transport/embedhttp"
	openaiEmb "github.com/clinika/notectx/internal/transport/openai"
	"github.com/clinika/notectx/internal/transport/vectorhttp"
	documentuc "github.com/clinika/notectx/internal/usecase/document"
	healthuc "github.com/clinika/notectx/internal/usecase/health"
	ingestuc "github.com/clinika/notectx/internal/usecase/ingest"
	searchuc "github.com/clinika/notectx/internal/usecase/search"
	"github.com/clinika/notectx/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting notectx API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.Backends.Embedding.Provider),
		zap.String("embedding_url", cfg.Backends.Embedding.URL),
		zap.String("vector_store_url", cfg.Backends.VectorStore.URL),
	)

	// Register backend metrics explicitly (no init())
	metrics.RegisterBackendMetrics()

	// Backend clients — composition root
	embedClient := embedhttp.New(embedhttp.Config{
		BaseURL: cfg.Backends.Embedding.URL,
		APIKey:  cfg.Backends.Embedding.APIKey,
		Timeout: time.Duration(cfg.Backends.Embedding.TimeoutSec) * time.Second,
	})
	vectorClient := vectorhttp.New(vectorhttp.Config{
		BaseURL: cfg.Backends.VectorStore.URL,
		APIKey:  cfg.Backends.VectorStore.APIKey,
		Timeout: time.Duration(cfg.Backends.VectorStore.TimeoutSec) * time.Second,
	})

	// Query embedder per provider. Document ingestion always goes through the
	// embedding service, which owns chunking.
	queryEmbedder, embeddingChecker := buildQueryEmbedder(cfg, embedClient)

	// Use case services
	searchSvc := searchuc.New(vectorClient, vectorClient, queryEmbedder).
		WithWeights(searchuc.Weights{
			Semantic: cfg.Search.SemanticWeight,
			Keyword:  cfg.Search.KeywordWeight,
		})
	ingestSvc := ingestuc.New(ingestrepo.New(embedClient, vectorClient)).
		WithMaxBatchSize(cfg.Search.MaxBatchSize)
	docSvc := documentuc.New(vectorClient).
		WithPagination(cfg.Documents.DefaultPageSize, cfg.Documents.MaxPageSize)
	healthSvc := healthuc.New(embeddingChecker, vectorClient)

	server := chiTransport.NewServer(searchSvc, ingestSvc, docSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildQueryEmbedder selects the query embedding provider and the matching
// health checker.
func buildQueryEmbedder(cfg config.Config, embedClient *embedhttp.Client) (domain.Embedder, healthuc.BackendChecker) {
	if cfg.Backends.Embedding.Provider == "openai" {
		emb := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Backends.Embedding.OpenAI.APIKey,
			BaseURL:    cfg.Backends.Embedding.OpenAI.BaseURL,
			Model:      cfg.Backends.Embedding.OpenAI.Model,
			Dimensions: cfg.Backends.Embedding.OpenAI.Dimensions,
		})
		return emb, emb
	}
	return embedClient, embedClient
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
