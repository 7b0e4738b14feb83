package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cityhunt/cityhunt/internal/client"
	"github.com/cityhunt/cityhunt/internal/server"
	"github.com/cityhunt/cityhunt/internal/web"
	"github.com/cityhunt/cityhunt/internal/web/sessions"
)

func main() {
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := os.Getenv("CITYHUNT_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8081"
	}

	// Session storage: Redis when configured, in-memory otherwise
	var store sessions.Store
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg := sessions.DefaultRedisConfig()
		cfg.URL = redisURL
		redisStore, err := sessions.NewRedisStore(cfg)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = redisStore
		logger.Info("using Redis session store")
	} else {
		store = sessions.NewMemoryStore()
		logger.Info("using in-memory session store")
	}
	defer func() { _ = store.Close() }()

	router := web.NewRouter(web.RouterConfig{
		Logger:   logger,
		API:      client.New(apiURL+"/api", client.NoToken),
		Sessions: store,
	})

	serverConfig := server.DefaultConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}

	srv := server.New(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("gateway started",
		slog.String("addr", srv.Addr()),
		slog.String("api", apiURL))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("gateway stopped")
}
