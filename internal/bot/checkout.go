package bot

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"telegram-shop-bot/internal/conversation"
	"telegram-shop-bot/internal/payment"
	"telegram-shop-bot/internal/session"
	"telegram-shop-bot/internal/storage"
)

const checkoutTimeout = 30 * time.Second

// checkout creates the PIX charge and the card preference, records the
// order and only then clears the cart. Any failure before that point leaves
// the cart exactly as it was.
func (b *Bot) checkout(ctx context.Context, userID int64) {
	sess := b.sessions.GetOrCreate(userID)
	if len(sess.Cart) == 0 {
		b.send(userID, "🛒 Seu carrinho está vazio.\nUse /produtos para ver o catálogo.")
		return
	}

	total := sess.CartTotal()
	orderID := uuid.NewString()
	description := fmt.Sprintf("Pedido %s (%d itens)", shortID(orderID), len(sess.Cart))
	payerEmail := fmt.Sprintf("%d@%s", userID, b.cfg.PayerEmailDomain)

	ctx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	charge, err := b.payments.CreatePIXCharge(ctx, payment.ChargeRequest{
		Amount:            total,
		Description:       description,
		PayerEmail:        payerEmail,
		ExternalReference: orderID,
	})
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", userID).Msg("pix charge failed")
		b.send(userID, "⚠️ Não foi possível gerar o pagamento agora. Seu carrinho foi mantido, tente novamente em instantes.")
		return
	}

	items := make([]storage.OrderItem, len(sess.Cart))
	for i, item := range sess.Cart {
		items[i] = storage.OrderItem{Name: item.Name, Price: item.Price, MAC: item.MAC}
	}
	order := storage.Order{
		ID:        orderID,
		UserID:    userID,
		UserName:  sess.Name,
		Items:     items,
		Total:     total,
		Status:    storage.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := b.store.SaveOrder(order); err != nil {
		b.log.Error().Err(err).Str("order_id", orderID).Msg("save order failed")
		b.send(userID, "⚠️ Não foi possível registrar o pedido. Seu carrinho foi mantido, tente novamente.")
		return
	}

	b.sessions.Update(userID, func(s *session.Session) {
		s.Cart = nil
		s.Pending = nil
		s.State = conversation.StateMenu
	})

	b.send(userID, fmt.Sprintf(
		"✅ Pedido %s criado!\nTotal: R$ %s\n\nPague com o PIX abaixo. Você receberá a confirmação aqui assim que o pagamento for aprovado.",
		shortID(orderID), total.StringFixed(2)))

	b.sendPIX(userID, charge)

	// The card link is a courtesy; the PIX charge already stands on its
	// own if the preference call fails.
	pref, err := b.payments.CreatePreference(ctx, payment.PreferenceRequest{
		Title:             description,
		Amount:            total,
		PayerEmail:        payerEmail,
		ExternalReference: orderID,
	})
	if err != nil {
		b.log.Warn().Err(err).Str("order_id", orderID).Msg("preference creation failed")
		return
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💳 Pagar com Cartão", pref.InitPoint),
		),
	)
	b.sendWithMarkup(userID, "Prefere cartão? Use o link abaixo:", markup)
}

func (b *Bot) sendPIX(userID int64, charge *payment.Charge) {
	png := b.qrPNG(charge)
	if png != nil {
		photo := tgbotapi.NewPhoto(userID, tgbotapi.FileBytes{Name: "pix.png", Bytes: png})
		photo.Caption = "📱 Escaneie o QR Code para pagar"
		if _, err := b.api.Send(photo); err != nil {
			b.log.Error().Err(err).Int64("chat_id", userID).Msg("send qr photo failed")
		}
	}

	if charge.QRCode != "" {
		b.send(userID, "Ou copie e cole o código PIX:\n\n"+charge.QRCode)
	}
}

// qrPNG prefers the image the gateway already rendered and falls back to
// rendering the copy-and-paste payload locally.
func (b *Bot) qrPNG(charge *payment.Charge) []byte {
	if charge.QRCodeBase64 != "" {
		png, err := base64.StdEncoding.DecodeString(charge.QRCodeBase64)
		if err == nil {
			return png
		}
		b.log.Warn().Err(err).Msg("gateway qr_code_base64 undecodable")
	}
	if charge.QRCode != "" {
		png, err := qrcode.Encode(charge.QRCode, qrcode.Medium, 512)
		if err == nil {
			return png
		}
		b.log.Warn().Err(err).Msg("local qr render failed")
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
