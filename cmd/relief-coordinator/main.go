package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-relief-coordinator/internal/api"
	"github.com/mr1hm/go-relief-coordinator/internal/cache"
	"github.com/mr1hm/go-relief-coordinator/internal/config"
	"github.com/mr1hm/go-relief-coordinator/internal/geocode"
	"github.com/mr1hm/go-relief-coordinator/internal/ingestion"
	"github.com/mr1hm/go-relief-coordinator/internal/logging"
	"github.com/mr1hm/go-relief-coordinator/internal/matching"
	"github.com/mr1hm/go-relief-coordinator/internal/notify"
	"github.com/mr1hm/go-relief-coordinator/internal/realtime"
	"github.com/mr1hm/go-relief-coordinator/internal/repository"
)

// snapshotRetention bounds how long a shared snapshot outlives its TTL as an
// outage fallback.
const snapshotRetention = 7 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := newStore(ctx, cfg.DB)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	sender, err := newSender(ctx, cfg.Notify)
	if err != nil {
		logging.Fatalf("Failed to initialize notification sender: %v", err)
	}

	matcher := matching.NewMatcher(store, cfg.Matching.RadiusKm)
	dispatcher := notify.NewDispatcher(matcher, sender, notify.Options{
		RadiusKm:    cfg.Matching.RadiusKm,
		Timeout:     cfg.Notify.Timeout,
		Concurrency: cfg.Notify.Concurrency,
		Audit:       store,
	})

	snapshots, closeCache := newCache(ctx, cfg.Cache)
	defer closeCache()

	aggregator := ingestion.NewAggregator(snapshots, newSources(cfg.Feeds), ingestion.Options{
		TTL:           cfg.Feeds.CacheTTL,
		SourceTimeout: cfg.Feeds.Timeout,
		Geocoder:      newGeocoder(cfg.Geocode),
	})

	scheduler := ingestion.NewScheduler(aggregator, cfg.Feeds.RefreshSchedule)
	if err := scheduler.Start(); err != nil {
		logging.Fatalf("Failed to start refresh scheduler: %v", err)
	}

	broadcaster := realtime.NewBroadcaster()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))

	// Registered ahead of the rate limiter so scrapes and sockets are not throttled.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", gin.WrapH(realtime.NewHandler(broadcaster)))

	router.Use(api.RateLimitMiddleware(cfg.RateLimit.RPS))
	handler := api.NewHandler(api.Deps{
		Store:     store,
		Finder:    matcher,
		Notifier:  dispatcher,
		Disasters: aggregator,
		Events:    broadcaster,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	scheduler.Stop()
	broadcaster.Close() // Close all websocket clients gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func newStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error) {
	if cfg.Driver == "memory" {
		store := repository.NewMemoryStore()
		if err := repository.SeedSampleData(ctx, store); err != nil {
			return nil, err
		}
		slog.Info("using in-memory store with sample data")
		return store, nil
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}
	db, err := repository.NewSQLiteDB(cfg.Path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newSender(ctx context.Context, cfg config.NotifyConfig) (notify.Sender, error) {
	switch cfg.Provider {
	case "twilio":
		slog.Info("sending alerts through Twilio")
		return notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber), nil
	case "sns":
		slog.Info("sending alerts through Amazon SNS", "region", cfg.SNSRegion)
		sender, err := notify.NewSNSSender(ctx, cfg.SNSRegion)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		slog.Info("alerts are simulated and logged only")
		return notify.NewLogSender(slog.Default()), nil
	}
}

// newCache prefers Redis when configured and falls back to process memory if
// it cannot be reached.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(), func() {}
	}

	rdb, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("redis unavailable, using in-memory disaster cache", "error", err)
		return cache.NewMemoryCache(), func() {}
	}
	slog.Info("using redis disaster cache", "addr", cfg.RedisAddr)
	return cache.NewRedisCache(rdb, snapshotRetention), func() { rdb.Close() }
}

func newGeocoder(cfg config.GeocodeConfig) geocode.Geocoder {
	chain := geocode.Chain{geocode.NewGazetteer()}
	if cfg.GoogleMapsAPIKey == "" {
		return chain
	}

	google, err := geocode.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, cfg.Timeout)
	if err != nil {
		slog.Warn("Google geocoding disabled", "error", err)
		return chain
	}
	return append(chain, google)
}

func newSources(cfg config.FeedsConfig) []ingestion.Source {
	var sources []ingestion.Source
	if cfg.ReliefWebEnabled {
		sources = append(sources, ingestion.NewReliefWebSource(cfg.ReliefWebURL, cfg.ReliefWebAppName, cfg.Timeout))
	}
	if cfg.GDACSEnabled {
		sources = append(sources, ingestion.NewGDACSSource(cfg.GDACSURL, cfg.Timeout))
	}
	if cfg.NewsEnabled {
		sources = append(sources, ingestion.NewRSSSource(cfg.NewsURL, cfg.Timeout))
	}
	return sources
}
