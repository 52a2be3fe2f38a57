package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-shop-bot/internal/conversation"
	"telegram-shop-bot/internal/session"
	"telegram-shop-bot/internal/storage"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	sess := b.sessions.GetOrCreate(userID)
	switch sess.State {
	case conversation.StateAskName:
		b.handleName(userID, msg.Text)
	case conversation.StateAskPhone:
		b.handlePhone(userID, msg)
	case conversation.StateAskMAC:
		b.handleMAC(userID, msg.Text)
	default:
		b.send(userID, "Use /produtos para ver o catálogo ou /carrinho para ver seu carrinho.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(userID)
	case "produtos":
		b.showCategories(userID)
	case "carrinho":
		b.showCart(userID)
	case "finalizar_compra":
		b.checkout(ctx, userID)
	case "cancelar":
		b.handleCancel(userID)
	case "pedidos":
		b.adminListOrders(userID)
	case "entregar":
		b.adminDeliver(userID, strings.TrimSpace(msg.CommandArguments()))
	case "relatorio":
		b.adminReport(userID)
	default:
		b.send(userID, "Comando desconhecido. Use /produtos para ver o catálogo.")
	}
}

func (b *Bot) handleStart(userID int64) {
	sess := b.sessions.GetOrCreate(userID)

	// A user registered in a previous process life is restored from the
	// store so the second /start short-circuits to the menu.
	if !sess.Registered() {
		if u, err := b.store.GetUser(userID); err == nil {
			b.sessions.Update(userID, func(s *session.Session) {
				s.Name = u.Name
				s.Phone = u.Phone
			})
			sess = b.sessions.GetOrCreate(userID)
		}
	}

	// /start restarts the dialogue from the top regardless of where the
	// user left off.
	if sess.Registered() {
		b.sessions.Update(userID, func(s *session.Session) {
			s.State = conversation.StateIdle
			b.transition(s, conversation.EventAlreadyRegistered)
		})
		b.send(userID, "Olá novamente! Você já está cadastrado.\nUse /produtos para ver o catálogo.")
		return
	}

	b.sessions.Update(userID, func(s *session.Session) {
		s.State = conversation.StateIdle
		b.transition(s, conversation.EventStart)
	})
	b.send(userID, "Olá! Por favor, diga seu nome para iniciar o cadastro:")
}

func (b *Bot) handleName(userID int64, text string) {
	name := strings.TrimSpace(text)
	if name == "" {
		b.send(userID, "❌ Nome vazio. Por favor, diga seu nome:")
		return
	}

	b.sessions.Update(userID, func(s *session.Session) {
		s.Name = name
		b.transition(s, conversation.EventNameGiven)
	})
	b.send(userID, "Agora, por favor, envie seu telefone com DDD (somente números):")
}

func (b *Bot) handlePhone(userID int64, msg *tgbotapi.Message) {
	phone := strings.TrimSpace(msg.Text)
	if msg.Contact != nil {
		phone = strings.TrimPrefix(msg.Contact.PhoneNumber, "+")
	}

	if !validPhone(phone) {
		b.send(userID, "❌ Por favor, envie um número de telefone válido contendo apenas dígitos (DDD + número).")
		return
	}

	var name string
	b.sessions.Update(userID, func(s *session.Session) {
		s.Phone = phone
		name = s.Name
		b.transition(s, conversation.EventPhoneGiven)
	})

	if err := b.store.SaveUser(storage.User{
		ID:        userID,
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
	}); err != nil {
		b.log.Error().Err(err).Int64("chat_id", userID).Msg("save user failed")
	}

	b.send(userID, fmt.Sprintf(
		"✅ Cadastro concluído!\nNome: %s\nTelefone: %s\n\nUse /produtos para ver o catálogo.", name, phone))
}

func validPhone(phone string) bool {
	if len(phone) < 10 || len(phone) > 11 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (b *Bot) handleMAC(userID int64, text string) {
	mac, ok := session.NormalizeMAC(text)
	if !ok {
		b.send(userID, "❌ MAC inválido. Envie 12 caracteres hexadecimais (ex: AA:BB:CC:DD:EE:FF):")
		return
	}

	sess := b.sessions.GetOrCreate(userID)
	if sess.Pending == nil {
		// State desync: the pending product was lost (for example across a
		// restart). Recover to the menu instead of guessing.
		b.sessions.Update(userID, func(s *session.Session) {
			s.State = conversation.StateMenu
		})
		b.send(userID, "⚠️ Ocorreu um erro com o produto selecionado. Use /produtos para escolher novamente.")
		return
	}

	var productName string
	b.sessions.Update(userID, func(s *session.Session) {
		if s.Pending == nil {
			return
		}
		productName = s.Pending.Name
		s.Cart = append(s.Cart, session.CartItem{
			Name:  s.Pending.Name,
			Price: s.Pending.Price,
			MAC:   mac,
		})
		s.Pending = nil
		b.transition(s, conversation.EventMACGiven)
	})

	b.sendWithMarkup(userID,
		fmt.Sprintf("✅ %s adicionado ao carrinho (MAC %s).", productName, mac),
		afterAddKeyboard())
}

func (b *Bot) handleCancel(userID int64) {
	b.sessions.Update(userID, func(s *session.Session) {
		s.Pending = nil
		s.State = conversation.StateMenu
	})
	b.send(userID, "Operação cancelada. Use /produtos para ver o catálogo.")
}
