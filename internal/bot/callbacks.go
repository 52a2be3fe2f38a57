package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-shop-bot/internal/callback"
	"telegram-shop-bot/internal/catalog"
	"telegram-shop-bot/internal/conversation"
	"telegram-shop-bot/internal/session"
)

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Always ack so the client stops its spinner, even on bad payloads.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("callback ack failed")
	}

	if query.Message == nil {
		return
	}
	userID := query.Message.Chat.ID

	data, err := callback.Parse(query.Data)
	if err != nil {
		b.log.Warn().Err(err).Str("data", query.Data).Msg("bad callback payload")
		b.send(userID, "⚠️ Botão inválido. Use /produtos para recomeçar.")
		return
	}

	switch data.Kind {
	case callback.KindCategory:
		b.showProducts(userID, data.Category)
	case callback.KindProduct:
		b.selectProduct(userID, data.Product)
	case callback.KindViewCart:
		b.showCart(userID)
	case callback.KindCheckout:
		b.checkout(ctx, userID)
	case callback.KindClearCart:
		b.clearCart(userID)
	case callback.KindBack:
		b.showCategories(userID)
	case callback.KindDelivered:
		b.adminDeliver(userID, data.OrderID)
	}
}

func (b *Bot) showCategories(userID int64) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cat := range catalog.Categories() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 "+cat,
				callback.Encode(callback.Data{Kind: callback.KindCategory, Category: cat})),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛒 Ver Carrinho",
			callback.Encode(callback.Data{Kind: callback.KindViewCart})),
	))

	// Browsing can start from anywhere (/produtos, a stale keyboard), so
	// re-anchor at the menu before walking the flow table.
	b.sessions.Update(userID, func(s *session.Session) {
		s.State = conversation.StateMenu
		b.transition(s, conversation.EventBrowse)
	})
	b.sendWithMarkup(userID, "Escolha uma categoria:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showProducts(userID int64, category string) {
	products := catalog.ByCategory(category)
	if len(products) == 0 {
		b.send(userID, "⚠️ Categoria não encontrada. Use /produtos para ver o catálogo.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name,
				callback.Encode(callback.Data{Kind: callback.KindProduct, Product: p.Name, Price: p.Price})),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Voltar",
			callback.Encode(callback.Data{Kind: callback.KindBack})),
	))

	b.sessions.Update(userID, func(s *session.Session) {
		s.State = conversation.StateSelectCategory
		b.transition(s, conversation.EventCategoryChosen)
	})
	b.sendWithMarkup(userID, fmt.Sprintf("Produtos em %s:", category),
		tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) selectProduct(userID int64, name string) {
	product, ok := catalog.Find(name)
	if !ok {
		b.send(userID, "⚠️ Produto não encontrado. Use /produtos para ver o catálogo.")
		return
	}

	if product.RequiresMAC {
		p := product
		b.sessions.Update(userID, func(s *session.Session) {
			s.Pending = &p
			s.State = conversation.StateSelectProduct
			b.transition(s, conversation.EventMACRequired)
		})
		b.send(userID, fmt.Sprintf(
			"Para ativar %s preciso do MAC do aparelho.\nEnvie o endereço MAC (ex: AA:BB:CC:DD:EE:FF):",
			product.Name))
		return
	}

	b.sessions.Update(userID, func(s *session.Session) {
		s.Cart = append(s.Cart, session.CartItem{Name: product.Name, Price: product.Price})
		s.State = conversation.StateSelectProduct
		b.transition(s, conversation.EventProductAdded)
	})
	b.sendWithMarkup(userID,
		fmt.Sprintf("✅ %s adicionado ao carrinho.", product.Name),
		afterAddKeyboard())
}

func (b *Bot) showCart(userID int64) {
	sess := b.sessions.GetOrCreate(userID)
	if len(sess.Cart) == 0 {
		b.send(userID, "🛒 Seu carrinho está vazio.\nUse /produtos para ver o catálogo.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 Seu carrinho:\n\n")
	for i, item := range sess.Cart {
		fmt.Fprintf(&sb, "%d. %s — R$ %s", i+1, item.Name, item.Price.StringFixed(2))
		if item.MAC != "" {
			fmt.Fprintf(&sb, " (MAC %s)", item.MAC)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nTotal: R$ %s", sess.CartTotal().StringFixed(2))

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Finalizar Compra",
				callback.Encode(callback.Data{Kind: callback.KindCheckout})),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Limpar Carrinho",
				callback.Encode(callback.Data{Kind: callback.KindClearCart})),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Voltar",
				callback.Encode(callback.Data{Kind: callback.KindBack})),
		),
	)
	b.sendWithMarkup(userID, sb.String(), markup)
}

func (b *Bot) clearCart(userID int64) {
	b.sessions.Update(userID, func(s *session.Session) {
		s.Cart = nil
		s.Pending = nil
	})
	b.send(userID, "🗑 Carrinho esvaziado.\nUse /produtos para ver o catálogo.")
}

func afterAddKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Continuar Comprando",
				callback.Encode(callback.Data{Kind: callback.KindBack})),
			tgbotapi.NewInlineKeyboardButtonData("🛒 Ver Carrinho",
				callback.Encode(callback.Data{Kind: callback.KindViewCart})),
		),
	)
}
