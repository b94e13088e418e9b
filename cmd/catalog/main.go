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

	"github.com/shoplens/catalog/internal/config"
	"github.com/shoplens/catalog/internal/db/mongodb"
	dbRedis "github.com/shoplens/catalog/internal/db/redis"
	logpkg "github.com/shoplens/catalog/internal/logger"
	"github.com/shoplens/catalog/internal/metrics"
	"github.com/shoplens/catalog/internal/repository/extractcache"
	productrepo "github.com/shoplens/catalog/internal/repository/product"
	"github.com/shoplens/catalog/internal/seed"
	chiTransport "github.com/shoplens/catalog/internal/transport/chi"
	openaiExt "github.com/shoplens/catalog/internal/transport/openai"
	cataloguc "github.com/shoplens/catalog/internal/usecase/catalog"
	healthuc "github.com/shoplens/catalog/internal/usecase/health"
	searchuc "github.com/shoplens/catalog/internal/usecase/search"
	"github.com/shoplens/catalog/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalog API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db", cfg.Database.Name),
	)

	ctx := context.Background()

	mongoClient, err := mongodb.Connect(ctx, mongodb.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Name,
		ConnectTimeout: time.Duration(cfg.Database.ConnectTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoClient.Close(context.Background()) }()

	if err := mongoClient.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register extraction metrics explicitly (no init())
	metrics.RegisterExtractionMetrics()

	// Build extractor chain — composition root
	baseExtractor := openaiExt.NewExtractor(&openaiExt.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Logger:  logger,
	})

	var extractor searchuc.Extractor = baseExtractor
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create extraction cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		extractor = extractcache.New(baseExtractor, cacheStore, ttl, metrics.ExtractionCacheTotal, logger)
		logger.Info("Extraction cache enabled",
			zap.Strings("addrs", cfg.Cache.Addrs),
			zap.Duration("ttl", ttl),
		)
	}

	productRepo := productrepo.New(mongoClient.Products())

	if cfg.Seed.Enabled {
		if err := seed.Run(ctx, productRepo, logger); err != nil {
			logger.Error("Failed to seed catalog", zap.Error(err))
		}
	}

	// Use case services
	catalogSvc := cataloguc.New(productRepo).WithPageSize(cfg.Pagination.DefaultLimit)
	searchSvc := searchuc.New(productRepo, extractor).WithLimit(cfg.Search.ResultLimit)
	healthSvc := healthuc.New(mongoClient, baseExtractor)

	server := chiTransport.NewServer(catalogSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())

	r.Group(func(r chi.Router) {
		r.Use(chiTransport.RateLimiter(
			cfg.RateLimit.MaxRequests,
			time.Duration(cfg.RateLimit.WindowSec)*time.Second,
			logger,
		))
		server.APIRoutes(r)
	})
	server.OpsRoutes(r)

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
						"error": "Internal server error",
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
