package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/bot"
	"giveaway-bot/internal/common/config"
	"giveaway-bot/internal/common/logger"
	chrepository "giveaway-bot/internal/features/channel/repository"
	chredis "giveaway-bot/internal/features/channel/repository/redis"
	chsqlite "giveaway-bot/internal/features/channel/repository/sqlite"
	chservice "giveaway-bot/internal/features/channel/service"
	"giveaway-bot/internal/features/giveaway/repository"
	gwredis "giveaway-bot/internal/features/giveaway/repository/redis"
	gwsqlite "giveaway-bot/internal/features/giveaway/repository/sqlite"
	"giveaway-bot/internal/features/giveaway/service"
	"giveaway-bot/internal/platform/redis"
	"giveaway-bot/internal/platform/sqlite"
	"giveaway-bot/internal/platform/telegram"
)

func main() {
	cfg := config.Load()
	logger.Init("giveaway-bot", cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gwRepo, chRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open storage")
	}
	defer closeStore()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("Storage ready")

	tg := telegram.NewClient(cfg.Telegram.BotToken)
	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to reach the Telegram Bot API")
	}
	log.Info().Str("username", me.Username).Msg("Authorized as bot")

	display := bot.NewDisplay(tg, me.Username)
	gate := service.NewGate(service.NewVerifier(tg))

	giveaways := service.NewGiveawayService(gwRepo, display)
	enrollment := service.NewEnrollmentService(gwRepo, gate)
	selector := service.NewSelectorService(gwRepo, gate)
	channels := chservice.NewChannelService(chRepo)

	counter := service.NewCounterService(gwRepo, display, cfg.Counter.Interval)
	counter.Start()
	defer counter.Stop()

	b := bot.New(cfg, tg, giveaways, enrollment, selector, channels, me.Username)

	if cfg.Telegram.WebhookURL != "" {
		if err := tg.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			log.Fatal().Err(err).Msg("Failed to register the webhook")
		}
		log.Info().Str("url", cfg.Telegram.WebhookURL).Msg("Webhook registered")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      bot.NewRouter(b, cfg.Telegram.WebhookSecret, cfg.Debug),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// openStore builds both feature repositories on the configured backend
// and returns a closer for the underlying connection.
func openStore(ctx context.Context, cfg *config.Config) (repository.GiveawayRepository, chrepository.ChannelRepository, func(), error) {
	switch cfg.Storage.Driver {
	case "redis":
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		client, err := redis.Open(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		return gwredis.NewGiveawayRepository(client.Client),
			chredis.NewChannelRepository(client.Client),
			func() { _ = client.Close() },
			nil

	case "sqlite":
		db, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return gwsqlite.NewGiveawayRepository(db),
			chsqlite.NewChannelRepository(db),
			func() { _ = db.Close() },
			nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
