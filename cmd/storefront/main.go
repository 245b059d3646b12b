package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/cache"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
)

type Config struct {
	HTTPPort        string
	CommerceAPIURL  string
	RedisAddr       string
	LogMode         string
	RequestTimeout  time.Duration
	RemoteTimeout   time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CommerceAPIURL:  getEnv("COMMERCE_API_URL", "http://localhost:9090/api"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		LogMode:         getEnv("LOG_MODE", "dev"),
		RequestTimeout:  30 * time.Second,
		RemoteTimeout:   10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	// No redis configured means the snapshot store lives in-process; the
	// engine degrades to session-only persistence rather than refusing to
	// start.
	var store cache.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = cache.NewRedisStore(client, "storefront")
		log.Info("using redis snapshot store", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemoryStore()
		log.Info("using in-memory snapshot store")
	}

	manager := session.NewManager()
	client := api.NewClient(cfg.CommerceAPIURL, cfg.RemoteTimeout, manager.Token)
	notices := service.NewNotices()

	cartService := service.NewCartService(store, client, manager, notices, log)
	wishlistService := service.NewWishlistService(store, client, manager, notices, log)
	ordersService := service.NewOrdersService(client, log)
	reconciler := session.NewReconciler(manager, cartService, wishlistService, notices, log)

	// Fast path: local snapshots first; the remote record is only consulted
	// once a session authenticates.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.RemoteTimeout)
	reconciler.Restore(startupCtx, nil, nil)
	cancelStartup()

	router := h.NewRouter(
		h.NewCartHandler(cartService),
		h.NewWishlistHandler(wishlistService),
		h.NewOrdersHandler(ordersService, cfg.RemoteTimeout),
		h.NewSessionHandler(reconciler, manager, notices),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
}
