package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailblast/internal/api"
	"github.com/ignite/mailblast/internal/config"
	"github.com/ignite/mailblast/internal/dispatch"
	"github.com/ignite/mailblast/internal/pkg/logger"
	"github.com/ignite/mailblast/internal/progress"
	"github.com/ignite/mailblast/internal/smtp"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPII)

	// SMTP transport
	mailer := smtp.NewMailer()
	mailer.SetDialTimeout(cfg.SMTP.DialTimeout())

	// Progress publishers: always the in-process hub, plus Redis snapshots
	// when enabled
	hub := progress.NewHub()
	publishers := progress.Multi{hub}

	var store *progress.RedisStore
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, progress snapshots disabled", "addr", cfg.Redis.Addr, "error", err.Error())
			client.Close()
		} else {
			store = progress.NewRedisStore(client, cfg.Redis.ProgressTTL())
			publishers = append(publishers, store)
			defer store.Close()
			logger.Info("redis progress snapshots enabled", "addr", cfg.Redis.Addr)
		}
		pingCancel()
	}

	// Dispatcher
	dispatcher := dispatch.New(mailer, publishers)
	dispatcher.SetPause(cfg.Dispatch.Delay())
	dispatcher.SetSendTimeout(cfg.Dispatch.SendTimeout())

	// HTTP server
	handlers := api.NewHandlers(mailer, dispatcher, hub, store)
	router := api.SetupRoutes(handlers, cfg.CORS.AllowedOrigins)
	server := api.NewServer(cfg.Server.GetHost(), cfg.Server.Port, router)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err.Error())
	}

	logger.Info("server stopped")
}
