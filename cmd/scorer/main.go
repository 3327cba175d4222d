package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/internal/scoring/handler"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Scorer/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting scoring service",
		"port", cfg.Server.Port,
		"stemmer", cfg.Scoring.Stemmer,
		"parallel_threshold", cfg.Scoring.ParallelThreshold,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	exec, err := executor.New(cfg.Scoring, m, cfg.Tracing.Enabled)
	if err != nil {
		slog.Error("failed to create score executor", "error", err)
		os.Exit(1)
	}

	var resultCache *cache.ResultCache
	var redisClient *pkgredis.Client
	if cfg.Cache.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, score caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			resultCache = cache.New(redisClient, cfg.Redis.CacheTTL, exec.Variant(), m)
			slog.Info("score cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Analytics, m)
		// Stopped by Close once the server has drained, not by the signal,
		// so events from in-flight requests are still published.
		collector.Start(context.Background())
		defer collector.Close()
		slog.Info("analytics enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	checker := health.NewChecker(0)
	checker.Register("tokenizer", func(ctx context.Context) health.ComponentHealth {
		if len(exec.Tokenize("health check")) != 2 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "tokenizer returned unexpected terms"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: exec.Stemmer()}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(exec, resultCache, collector, cfg.Server.MaxBodyBytes)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter := ratelimit.New(rl.RequestsPerSecond, rl.Burst, 0)
		defer limiter.Close()
		chain = middleware.RateLimit(limiter)(chain)
		slog.Info("rate limiting enabled", "rps", rl.RequestsPerSecond, "burst", rl.Burst)
	}
	chain = middleware.CORS(cfg.Server.CORS.AllowOrigins, cfg.Server.CORS.MaxAge)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("scoring service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	// Shutdown returns once in-flight handlers finish; only then is it safe
	// for the deferred closes to stop the collector and the cache.
	<-shutdownDone

	slog.Info("scoring service stopped")
}
