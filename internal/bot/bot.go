// Package bot wires the Telegram update loop to the conversation flow:
// registration, catalog browsing, cart, checkout and the admin commands.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/config"
	"telegram-shop-bot/internal/conversation"
	"telegram-shop-bot/internal/payment"
	"telegram-shop-bot/internal/session"
	"telegram-shop-bot/internal/storage"
)

// api is the slice of tgbotapi.BotAPI the handlers use. Tests substitute a
// recorder.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      api
	cfg      *config.Config
	sessions *session.Store
	store    storage.Store
	payments payment.Client
	log      zerolog.Logger
}

func New(a api, cfg *config.Config, sessions *session.Store, store storage.Store, payments payment.Client, log zerolog.Logger) *Bot {
	return &Bot{
		api:      a,
		cfg:      cfg,
		sessions: sessions,
		store:    store,
		payments: payments,
		log:      log.With().Str("component", "bot").Logger(),
	}
}

// Run consumes updates until the channel closes or ctx is cancelled.
// Updates are handled one at a time; the session store relies on that for
// its read-modify-write cycles staying coherent per user.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes one update. Exported so tests can drive the bot
// without a live polling channel.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// NotifyChat sends a plain text message to a chat. The webhook server uses
// it for payment confirmations.
func (b *Bot) NotifyChat(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// transition advances the session along the flow table. An undefined move
// means the session got out of step with the dialogue (stale keyboard,
// restart mid-flow); recover to the menu instead of wedging the user.
func (b *Bot) transition(s *session.Session, ev conversation.Event) {
	next, err := conversation.Next(s.State, ev)
	if err != nil {
		b.log.Warn().Err(err).Msg("flow desync")
		next = conversation.StateMenu
	}
	s.State = next
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}
