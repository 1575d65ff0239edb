package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/insightdesk/access-directory/internal/api"
	"github.com/insightdesk/access-directory/internal/core/service"
	"github.com/insightdesk/access-directory/internal/infrastructure/config"
	mongodb "github.com/insightdesk/access-directory/internal/infrastructure/db/mongo"
	redisdb "github.com/insightdesk/access-directory/internal/infrastructure/db/redis"
	"github.com/insightdesk/access-directory/internal/infrastructure/notify"
	"github.com/insightdesk/access-directory/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()

	clientRepo := mongodb.NewClientRepository(db)
	if err := clientRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Notification pipeline ---
	smtpNotifier := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
	dedup := redisdb.NewNotificationDedup(rdb)
	dispatcher := notify.NewDispatcher(cfg.Notify.Workers, smtpNotifier, dedup, log)
	dispatcher.Start(ctx)

	// --- Services ---
	directory := service.NewDirectoryService(clientRepo, dispatcher, log)
	importer := service.NewImportService(directory, log)

	// --- HTTP server ---
	e := api.NewRouter(directory, importer, db, rdb, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("access directory started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
