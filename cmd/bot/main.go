// Command bot runs the Telegram shop bot and its payment webhook server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/bot"
	"telegram-shop-bot/internal/config"
	"telegram-shop-bot/internal/payment"
	"telegram-shop-bot/internal/session"
	"telegram-shop-bot/internal/storage"
	"telegram-shop-bot/internal/webhook"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}
	defer store.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram")
	}
	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	payments := payment.NewMercadoPago(cfg.MercadoPagoToken, log)
	sessions := session.NewStore()
	b := bot.New(api, cfg, sessions, store, payments, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.WebhookAddr,
		Handler: webhook.NewServer(store, payments, b, log).Router(),
	}
	go func() {
		log.Info().Str("addr", cfg.WebhookAddr).Msg("webhook listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("webhook server")
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	b.Run(ctx, updates)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("webhook shutdown")
	}
	log.Info().Msg("stopped")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "json":
		return storage.NewJSONFile(cfg.DataDir)
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewSQLite(filepath.Join(cfg.DataDir, "shopbot.db"))
	default:
		return storage.NewMemory(), nil
	}
}
