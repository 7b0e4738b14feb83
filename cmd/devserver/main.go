// devserver runs the in-memory hunt backend, handy for local development of
// the gateway and the CLI without the production deployment.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cityhunt/cityhunt/internal/hunttest"
	"github.com/cityhunt/cityhunt/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	opts := []hunttest.Option{hunttest.WithLogger(logger)}
	if user := os.Getenv("ADMIN_USERNAME"); user != "" {
		opts = append(opts, hunttest.WithAdmin(user, os.Getenv("ADMIN_PASSWORD")))
	}
	backend := hunttest.New(opts...)

	serverConfig := server.DefaultConfig()
	serverConfig.Port = 8081
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}

	srv := server.New(backend.Handler(), serverConfig, logger)

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

	logger.Info("dev backend started", slog.String("addr", srv.Addr()))

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

	logger.Info("dev backend stopped")
}
