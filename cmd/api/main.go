package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rotaops/fleetline-backend/api/routes"
	"github.com/rotaops/fleetline-backend/internal/dispatch"
	"github.com/rotaops/fleetline-backend/internal/identity"
	"github.com/rotaops/fleetline-backend/internal/intents"
	"github.com/rotaops/fleetline-backend/internal/journeys"
	"github.com/rotaops/fleetline-backend/internal/lifecycle"
	"github.com/rotaops/fleetline-backend/internal/messaging"
	"github.com/rotaops/fleetline-backend/internal/occurrences"
	"github.com/rotaops/fleetline-backend/pkg/config"
	"github.com/rotaops/fleetline-backend/pkg/db"
	"github.com/rotaops/fleetline-backend/pkg/logger"
	"github.com/rotaops/fleetline-backend/pkg/metrics"
	"github.com/rotaops/fleetline-backend/pkg/migrate"
	"github.com/rotaops/fleetline-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	resolver, err := identity.NewResolver(identity.NewRepository(dbClient.DB()), cfg.Phone)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity resolver", err)
		os.Exit(1)
	}

	lifecycleService, err := lifecycle.NewService(lifecycle.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create lifecycle service", err)
		os.Exit(1)
	}

	journeyService, err := journeys.NewService(journeys.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create journey service", err)
		os.Exit(1)
	}

	classifier, err := intents.NewClient(cfg.Classifier)
	if err != nil {
		logg.Error(context.Background(), "failed to create intent classifier", err)
		os.Exit(1)
	}

	registry, err := buildSenderRegistry(cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sender registry", err)
		os.Exit(1)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logg.Error(context.Background(), "error closing senders", err)
		}
	}()

	dispatcher, err := dispatch.NewDispatcher(dispatch.Params{
		Repo:        dispatch.NewRepository(dbClient.DB()),
		Identity:    resolver,
		Classifier:  classifier,
		Sink:        intents.NewSinkRepository(dbClient.DB()),
		Lifecycle:   lifecycleService,
		Journeys:    journeyService,
		Occurrences: occurrences.NewRepository(dbClient.DB()),
		Senders:     registry,
		Dedupe:      redisClient,
		Logger:      logg,
		Metrics:     metrics.NewMessageMetrics(prometheus.DefaultRegisterer),
		Config:      cfg.Dispatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, dispatcher),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildSenderRegistry(cfg *config.Config) (*messaging.Registry, error) {
	var senders []messaging.Sender

	if cfg.WhatsApp.PhoneNumberID != "" && cfg.WhatsApp.AccessToken != "" {
		whatsapp, err := messaging.NewWhatsAppClient(cfg.WhatsApp)
		if err != nil {
			return nil, err
		}
		senders = append(senders, whatsapp)
	}

	if cfg.Telegram.Token != "" {
		telegram, err := messaging.NewTelegramClient(cfg.Telegram)
		if err != nil {
			return nil, err
		}
		senders = append(senders, telegram)
	}

	return messaging.NewRegistry(senders...)
}
